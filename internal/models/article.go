// Package models defines the records exchanged with the dev.to API.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Article is a dev.to article as returned by the list or detail endpoints.
// The list endpoint omits the bodies; the detail endpoint fills them in.
type Article struct {
	User         User    `json:"user"`
	TagList      TagList `json:"tag_list"`
	Tags         TagList `json:"tags"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Slug         string  `json:"slug"`
	URL          string  `json:"url"`
	PublishedAt  string  `json:"published_at"`
	CreatedAt    string  `json:"created_at"`
	CoverImage   string  `json:"cover_image"`
	BodyMarkdown string  `json:"body_markdown"`
	BodyHTML     string  `json:"body_html"`
	ID           int64   `json:"id"`
}

// User is the author block embedded in an article.
type User struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// TagList accepts either a JSON array of strings or a comma-delimited string.
type TagList []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}

	if data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode tag array: %w", err)
		}

		*t = cleanTags(items)

		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("decode tag string: %w", err)
	}

	*t = ParseTags(joined)

	return nil
}

// ParseTags splits a comma-delimited tag string.
func ParseTags(joined string) TagList {
	return cleanTags(strings.Split(joined, ","))
}

func cleanTags(items []string) TagList {
	out := make(TagList, 0, len(items))

	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out
}

// PublishedTime returns published_at, falling back to created_at.
func (a *Article) PublishedTime() (time.Time, error) {
	raw := a.PublishedAt
	if raw == "" {
		raw = a.CreatedAt
	}

	if raw == "" {
		return time.Time{}, ErrNoTimestamp
	}

	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, raw)
	}

	return ts.UTC(), nil
}

// AllTags prefers tag_list and falls back to tags.
func (a *Article) AllTags() []string {
	if len(a.TagList) > 0 {
		return a.TagList
	}

	return a.Tags
}

// AuthorName returns the author's display name or fallback when unset.
func (a *Article) AuthorName(fallback string) string {
	if name := strings.TrimSpace(a.User.Name); name != "" {
		return name
	}

	return fallback
}

// SlugSource is the text the post slug is derived from.
func (a *Article) SlugSource() string {
	if a.Slug != "" {
		return a.Slug
	}

	return a.Title
}
