// Package importer runs the fetch, localize and write pipeline for one dev.to user.
package importer

import (
	"context"
	"errors"
	"fmt"

	"devimport/internal/images"
	"devimport/internal/logger"
	"devimport/internal/models"
	"devimport/internal/post"
	"devimport/pkg/utils"
)

// ErrNoUsername is returned when Run is called without a username.
var ErrNoUsername = errors.New("no username configured")

const titleLogWidth = 60

// Fetcher loads every article of a user, bodies included.
type Fetcher interface {
	FetchArticles(ctx context.Context, username string) ([]models.Article, error)
}

// Localizer stores remote images next to the site.
type Localizer interface {
	Cover(ctx context.Context, rawURL, slugBase string) string
	Rewrite(ctx context.Context, markdown, slugBase string) images.Result
}

// PostWriter renders and persists posts.
type PostWriter interface {
	EnsureDir() error
	Status(name string) (post.State, error)
	Render(article *models.Article, body, background string) (string, error)
	Write(name, content string) (string, error)
}

// DirMaker is implemented by localizers that can prepare their directory up front.
type DirMaker interface {
	EnsureDir() error
}

// Report summarizes one run.
type Report struct {
	Paths        []string
	Fetched      int
	Saved        int
	Skipped      int
	Replaced     int
	Failed       int
	ImagesSaved  int
	ImagesFailed int
}

// Importer wires the pipeline stages together.
type Importer struct {
	fetcher   Fetcher
	localizer Localizer
	writer    PostWriter
	logger    *logger.Logger
	urls      *utils.HTTPHelper
	strs      *utils.StringHelper
	username  string
}

// New creates an importer for username.
func New(username string, fetcher Fetcher, localizer Localizer, writer PostWriter, log *logger.Logger) *Importer {
	if log == nil {
		log = logger.Discard()
	}

	return &Importer{
		fetcher:   fetcher,
		localizer: localizer,
		writer:    writer,
		logger:    log,
		urls:      utils.NewHTTPHelper("", ""),
		strs:      utils.NewStringHelper(),
		username:  username,
	}
}

// Run imports every article of the configured user. Only a failure to prepare
// the output or to fetch the article list aborts the run; per-article problems
// are logged and counted.
func (im *Importer) Run(ctx context.Context) (*Report, error) {
	if im.username == "" {
		return nil, ErrNoUsername
	}

	if err := im.writer.EnsureDir(); err != nil {
		return nil, err
	}

	if dm, ok := im.localizer.(DirMaker); ok {
		if err := dm.EnsureDir(); err != nil {
			return nil, err
		}
	}

	articles, err := im.fetcher.FetchArticles(ctx, im.username)
	if err != nil {
		return nil, err
	}

	report := &Report{Fetched: len(articles)}

	im.logger.Info(fmt.Sprintf("Fetched %d articles for %s", len(articles), im.username))

	for i := range articles {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		im.importOne(ctx, &articles[i], report)
	}

	return report, nil
}

func (im *Importer) importOne(ctx context.Context, article *models.Article, report *Report) {
	log := im.logger.With("id", article.ID, "title", im.strs.TruncateString(im.strs.NormalizeWhitespace(article.Title), titleLogWidth))

	name, err := post.Filename(article)
	if err != nil {
		log.Warn("cannot name post", "error", err)
		report.Failed++

		return
	}

	state, err := im.writer.Status(name)
	if err != nil {
		log.Warn("cannot inspect existing post", "file", name, "error", err)
		report.Failed++

		return
	}

	switch state {
	case post.Complete:
		log.Info(fmt.Sprintf("Skipping existing %s", name))
		report.Skipped++

		return
	case post.Incomplete:
		log.Info(fmt.Sprintf("Replacing incomplete %s", name))
	}

	slugBase := post.SlugBase(article)

	background := ""
	if article.CoverImage != "" {
		if im.urls.IsRemoteURL(article.CoverImage) {
			background = im.localizer.Cover(ctx, article.CoverImage, slugBase)
		} else {
			log.Warn("ignoring cover image that is not an http(s) URL", "url", article.CoverImage)
		}

		if background == "" {
			report.ImagesFailed++
		} else {
			report.ImagesSaved++
		}
	}

	rewritten := im.localizer.Rewrite(ctx, article.BodyMarkdown, slugBase)
	report.ImagesSaved += rewritten.Saved
	report.ImagesFailed += rewritten.Failed

	content, err := im.writer.Render(article, rewritten.Markdown, background)
	if err != nil {
		log.Warn("cannot render post", "file", name, "error", err)
		report.Failed++

		return
	}

	dest, err := im.writer.Write(name, content)
	if err != nil {
		log.Error("cannot write post", "file", name, "error", err)
		report.Failed++

		return
	}

	log.Info(fmt.Sprintf("Saved %s", dest), "images", rewritten.Saved)

	if state == post.Incomplete {
		report.Replaced++
	}

	report.Saved++
	report.Paths = append(report.Paths, dest)
}
