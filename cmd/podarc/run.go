package main

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"podarc/pkg/config"
	"podarc/pkg/feed"
	"podarc/pkg/fs"
	"podarc/pkg/model"
	"podarc/pkg/scrape"
)

// Generator runs the fetch-parse-assemble pipeline and writes the feed
// document to the configured output path.
type Generator struct {
	config      *config.Config
	fetcher     *scrape.Fetcher
	coordinator *scrape.Coordinator
}

func NewGenerator(cfg *config.Config) *Generator {
	fetcher := scrape.NewFetcher(cfg.Scrape)

	return &Generator{
		config:      cfg,
		fetcher:     fetcher,
		coordinator: scrape.NewCoordinator(fetcher, cfg.Scrape),
	}
}

func (g *Generator) Run(ctx context.Context) error {
	started := time.Now()

	result, err := g.coordinator.Run(ctx, g.config.Range())
	if err != nil {
		return err
	}

	for _, episode := range result.Episodes {
		if err := g.fetcher.ResolveMedia(ctx, episode); err != nil {
			// Enclosure size stays 0, the feed is still valid
			log.WithError(err).WithField("index", episode.Index).Warn("failed to resolve episode media")
		}
	}

	if g.config.Output.MediaDir != "" {
		media, err := fs.NewLocal(g.config.Output.MediaDir)
		if err != nil {
			return errors.Wrap(err, "failed to open media directory")
		}

		if err := g.archiveMedia(ctx, media, result.Episodes); err != nil {
			return err
		}
	}

	doc, err := feed.Assemble(result.Episodes, g.config.Feed)
	if err != nil {
		return errors.Wrap(err, "failed to assemble feed")
	}

	out, err := fs.NewLocal(filepath.Dir(g.config.Output.Path))
	if err != nil {
		return errors.Wrap(err, "failed to open output directory")
	}

	if err := g.writeFeed(ctx, out, doc.String()); err != nil {
		return err
	}

	log.Infof("generated feed %s with %d episode(s) in %s",
		g.config.Output.Path, len(result.Episodes), time.Since(started).Round(time.Millisecond))

	g.logSummary(result)
	return nil
}

func (g *Generator) writeFeed(ctx context.Context, storage fs.Storage, document string) error {
	name := filepath.Base(g.config.Output.Path)
	log.Debugf("saving feed XML file to %s", g.config.Output.Path)

	if _, err := storage.Create(ctx, name, strings.NewReader(document)); err != nil {
		return errors.Wrap(err, "failed to write XML feed to disk")
	}

	return nil
}

// archiveMedia keeps a copy of every episode's audio file in storage,
// skipping files already present with the expected size.
func (g *Generator) archiveMedia(ctx context.Context, storage fs.Storage, episodes []*model.Episode) error {
	for _, episode := range episodes {
		logger := log.WithField("index", episode.Index)
		name := mediaFileName(g.config.Output.MediaPrefix, episode)

		if size, err := storage.Size(ctx, name); err == nil && episode.Size > 0 && size == episode.Size {
			logger.Debugf("media file %s already archived", name)
			continue
		}

		body, err := g.fetcher.OpenMedia(ctx, episode)
		if err != nil {
			logger.WithError(err).Warn("failed to download episode media")
			continue
		}

		written, err := storage.Create(ctx, name, body)
		body.Close()
		if err != nil {
			return errors.Wrapf(err, "failed to archive media for episode %d", episode.Index)
		}

		logger.Infof("archived %s (%d bytes)", name, written)
	}

	return nil
}

func mediaFileName(prefix string, episode *model.Episode) string {
	ext := ".mp3"
	if u, err := url.Parse(episode.MediaURL); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}

	return fmt.Sprintf("%s_%03d%s", prefix, episode.Index, ext)
}

func (g *Generator) logSummary(result *scrape.Result) {
	for _, episode := range result.Episodes {
		log.Debugf("episode %d: %q", episode.Index, episode.Title)
	}

	if len(result.Failures) == 0 {
		return
	}

	log.Warnf("%d episode(s) failed to be processed:", len(result.Failures))
	for _, failure := range result.Failures {
		log.WithError(failure.Err).Warnf("episode %d", failure.Index)
	}
}
