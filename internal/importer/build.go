package importer

import (
	"devimport/internal/config"
	"devimport/internal/devto"
	"devimport/internal/images"
	"devimport/internal/logger"
	"devimport/internal/post"
)

// NewFromConfig assembles the dev.to client, image localizer and post writer
// described by cfg.
func NewFromConfig(cfg *config.Config, dryRun bool, log *logger.Logger) *Importer {
	if log == nil {
		log = logger.Discard()
	}

	client := devto.NewClient(cfg.API, log.With("component", "devto"))

	return newFromConfig(cfg, client, dryRun, log)
}

func newFromConfig(cfg *config.Config, client *devto.Client, dryRun bool, log *logger.Logger) *Importer {
	localizer := images.NewLocalizer(client, images.Options{
		Dir:          cfg.Images.Dir,
		PublicPrefix: cfg.Images.PublicPrefix,
		DefaultExt:   cfg.Images.DefaultExt,
		DryRun:       dryRun,
	}, log.With("component", "images"))

	writer := post.NewWriter(cfg.Posts.Dir, post.Options{
		Layout:         cfg.Posts.Layout,
		DefaultAuthor:  cfg.Posts.DefaultAuthor,
		Format:         cfg.Posts.FrontMatter,
		FormatTables:   cfg.Posts.FormatTables,
		VerifyExisting: cfg.Posts.VerifyExisting,
		DryRun:         dryRun,
	}, log.With("component", "post"))

	return New(cfg.Username, client, localizer, writer, log)
}
