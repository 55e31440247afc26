// Package images downloads article images and rewrites markdown to point at
// the local copies.
package images

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"devimport/internal/logger"
)

// imagePattern matches markdown images whose source is an absolute http(s) URL.
// Group 1 is the URL.
var imagePattern = regexp.MustCompile(`!\[[^\]]*]\((https?:[^)]+)\)`)

var extPattern = regexp.MustCompile(`^\.[A-Za-z0-9]{1,8}$`)

// Downloader fetches the bytes behind a URL.
type Downloader interface {
	Download(ctx context.Context, rawURL string) ([]byte, error)
}

// Options configures where images are stored and how posts reference them.
type Options struct {
	Dir          string
	PublicPrefix string
	DefaultExt   string
	DryRun       bool
}

// Localizer saves remote images under a local directory.
type Localizer struct {
	downloader Downloader
	logger     *logger.Logger
	opts       Options
}

// Result describes one Rewrite pass.
type Result struct {
	Markdown string
	Paths    []string
	Found    int
	Saved    int
	Failed   int
}

// NewLocalizer creates a localizer.
func NewLocalizer(downloader Downloader, opts Options, log *logger.Logger) *Localizer {
	if opts.DefaultExt == "" {
		opts.DefaultExt = ".jpg"
	}

	if log == nil {
		log = logger.Discard()
	}

	return &Localizer{
		downloader: downloader,
		logger:     log,
		opts:       opts,
	}
}

// EnsureDir creates the images directory. Dry runs leave the disk alone.
func (l *Localizer) EnsureDir() error {
	if l.opts.DryRun {
		return nil
	}

	if err := os.MkdirAll(l.opts.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create images dir: %w", err)
	}

	return nil
}

// Cover downloads the cover image as <slugBase>-cover.<ext> and returns its
// public path. Any failure yields "" and is only logged.
func (l *Localizer) Cover(ctx context.Context, rawURL, slugBase string) string {
	if strings.TrimSpace(rawURL) == "" {
		return ""
	}

	public, err := l.save(ctx, rawURL, slugBase+"-cover")
	if err != nil {
		l.logger.Warn("failed to download cover", "url", rawURL, "error", err)
		return ""
	}

	return public
}

// Rewrite downloads every remote markdown image in document order and points
// each successfully saved reference at its local copy. The index is 1-based
// and advances for every match, so a failure does not shift later names.
// Failed references keep their remote URL.
func (l *Localizer) Rewrite(ctx context.Context, markdown, slugBase string) Result {
	matches := imagePattern.FindAllStringSubmatchIndex(markdown, -1)

	result := Result{Found: len(matches)}
	if len(matches) == 0 {
		result.Markdown = markdown
		return result
	}

	var sb strings.Builder

	last := 0

	for i, m := range matches {
		urlStart, urlEnd := m[2], m[3]
		source := markdown[urlStart:urlEnd]

		public, err := l.save(ctx, source, InlineBaseName(slugBase, i+1, source))
		if err != nil {
			l.logger.Warn("failed to download image", "url", source, "error", err)
			result.Failed++

			continue
		}

		sb.WriteString(markdown[last:urlStart])
		sb.WriteString(public)

		last = urlEnd
		result.Saved++
		result.Paths = append(result.Paths, public)
	}

	sb.WriteString(markdown[last:])
	result.Markdown = sb.String()

	return result
}

// save downloads rawURL to <dir>/<baseName><ext> and returns the public path.
func (l *Localizer) save(ctx context.Context, rawURL, baseName string) (string, error) {
	filename := baseName + ExtensionFromURL(rawURL, l.opts.DefaultExt)
	public := path.Join(l.opts.PublicPrefix, filename)

	if l.opts.DryRun {
		l.logger.Info("dry run: would download image", "url", rawURL, "file", filename)
		return public, nil
	}

	data, err := l.downloader.Download(ctx, rawURL)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(l.opts.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create images dir: %w", err)
	}

	dest := filepath.Join(l.opts.Dir, filename)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	l.logger.Debug("saved image", "url", rawURL, "path", dest, "bytes", len(data))

	return public, nil
}

// InlineBaseName names the index-th inline image of an article, without extension.
func InlineBaseName(slugBase string, index int, rawURL string) string {
	return fmt.Sprintf("%s-%d-%s", slugBase, index, URLHash(rawURL))
}

// URLHash is the first six hex digits of the MD5 of the URL.
func URLHash(rawURL string) string {
	sum := md5.Sum([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:6]
}

// ExtensionFromURL returns the extension of the last path segment of rawURL,
// or fallback when there is none.
func ExtensionFromURL(rawURL, fallback string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}

	ext := path.Ext(path.Base(u.Path))
	if !extPattern.MatchString(ext) {
		return fallback
	}

	return ext
}
