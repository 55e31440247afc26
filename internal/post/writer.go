package post

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/frontmatter"

	"devimport/internal/formatter"
	"devimport/internal/logger"
	"devimport/internal/models"
	"devimport/pkg/metadata"
)

// ErrMissingTitle is returned when an existing post has no title in its front matter.
var ErrMissingTitle = errors.New("front matter has no title")

// State describes what is already on disk for a post filename.
type State int

const (
	// Missing means no file exists yet.
	Missing State = iota
	// Complete means the file exists and is treated as done.
	Complete
	// Incomplete means the file exists but failed verification.
	Incomplete
)

func (s State) String() string {
	switch s {
	case Missing:
		return "missing"
	case Complete:
		return "complete"
	case Incomplete:
		return "incomplete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options controls how posts are rendered and persisted.
type Options struct {
	Layout         string
	DefaultAuthor  string
	Format         string
	FormatTables   bool
	VerifyExisting bool
	DryRun         bool
}

// Writer renders posts and writes them into a directory.
type Writer struct {
	logger *logger.Logger
	now    func() time.Time
	dir    string
	opts   Options
}

// NewWriter creates a writer for dir.
func NewWriter(dir string, opts Options, log *logger.Logger) *Writer {
	if log == nil {
		log = logger.Discard()
	}

	if opts.Format == "" {
		opts.Format = FormatYAML
	}

	return &Writer{
		logger: log,
		now:    time.Now,
		dir:    dir,
		opts:   opts,
	}
}

// Path returns the full path of a post filename.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// EnsureDir creates the posts directory if needed.
func (w *Writer) EnsureDir() error {
	if w.opts.DryRun {
		return nil
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create posts dir: %w", err)
	}

	return nil
}

// Status reports whether name already exists. Without VerifyExisting any
// existing file counts as Complete; with it the file must carry a valid
// signature and parseable front matter.
func (w *Writer) Status(name string) (State, error) {
	data, err := os.ReadFile(w.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return Missing, nil
	}

	if err != nil {
		return Missing, fmt.Errorf("failed to read existing post: %w", err)
	}

	if !w.opts.VerifyExisting {
		return Complete, nil
	}

	if err := verify(data); err != nil {
		w.logger.Debug("existing post failed verification", "file", name, "error", err)
		return Incomplete, nil
	}

	return Complete, nil
}

func verify(data []byte) error {
	if _, err := metadata.Verify(string(data)); err != nil {
		return err
	}

	var fm map[string]any
	if _, err := frontmatter.Parse(bytes.NewReader(data), &fm); err != nil {
		return fmt.Errorf("parse front matter: %w", err)
	}

	if _, ok := fm["title"]; !ok {
		return ErrMissingTitle
	}

	return nil
}

// Render builds the complete post text for article.
func (w *Writer) Render(article *models.Article, body, background string) (string, error) {
	published, err := article.PublishedTime()
	if err != nil {
		return "", err
	}

	fm := FrontMatter{
		Layout:     w.opts.Layout,
		Title:      article.Title,
		Subtitle:   article.Description,
		Author:     article.AuthorName(w.opts.DefaultAuthor),
		Date:       published,
		Tags:       article.AllTags(),
		Background: background,
	}

	header, err := fm.Render(w.opts.Format)
	if err != nil {
		return "", err
	}

	if w.opts.FormatTables {
		body = formatter.FormatTables(body)
	}

	content := Compose(header, body)

	if w.opts.VerifyExisting {
		content = metadata.Sign(content, article.ID, w.now())
	}

	return content, nil
}

// Write stores content under name with a single write and returns the path.
func (w *Writer) Write(name, content string) (string, error) {
	dest := w.Path(name)

	if w.opts.DryRun {
		w.logger.Info("dry run: would write post", "path", dest, "bytes", len(content))
		return dest, nil
	}

	if err := os.WriteFile(dest, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write post: %w", err)
	}

	return dest, nil
}
