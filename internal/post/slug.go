// Package post turns an article into a static-site post file.
package post

import (
	"regexp"
	"strconv"
	"strings"

	"devimport/internal/models"
)

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// dottedCapitalI lower-cases to "i" plus a combining dot above, so the dot
// becomes a separator like any other non-ASCII rune.
var dottedCapitalI = strings.NewReplacer("\u0130", "i\u0307")

// DatePrefix is the layout of the UTC date that starts every post filename.
const DatePrefix = "2006-01-02"

// Slugify lower-cases text, collapses every run of non-alphanumerics into a
// single '-' and trims leading and trailing dashes. Slugify(Slugify(s)) == Slugify(s).
func Slugify(text string) string {
	s := strings.TrimSpace(strings.ToLower(dottedCapitalI.Replace(text)))
	s = nonSlugRun.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}

// SlugBase is the slug shared by the post filename and its image names.
// Titles without any ASCII letters or digits fall back to the article id.
func SlugBase(article *models.Article) string {
	if slug := Slugify(article.SlugSource()); slug != "" {
		return slug
	}

	return "article-" + strconv.FormatInt(article.ID, 10)
}

// Filename derives <YYYY-MM-DD>-<slug>.md from the publish (or creation) date and slug.
func Filename(article *models.Article) (string, error) {
	published, err := article.PublishedTime()
	if err != nil {
		return "", err
	}

	return published.Format(DatePrefix) + "-" + SlugBase(article) + ".md", nil
}
