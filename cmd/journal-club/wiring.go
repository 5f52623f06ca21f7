// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/journal-club/internal/archive"
	"github.com/pdiddy/journal-club/internal/arxiv"
	"github.com/pdiddy/journal-club/internal/convert"
	"github.com/pdiddy/journal-club/internal/messaging"
	"github.com/pdiddy/journal-club/internal/metrics"
	"github.com/pdiddy/journal-club/internal/pipeline"
	"github.com/pdiddy/journal-club/pkg/types"
)

// app is a fully wired pipeline plus the resources to release afterwards.
type app struct {
	env     *pipeline.Env
	repo    *arxiv.Client
	archive *archive.Store
	metrics *metrics.Metrics
	cfg     types.Config
}

// wireOptions select the optional parts of the wiring.
type wireOptions struct {
	// console replaces Slack with a writer when non-nil.
	console io.Writer
	// messenger is needed by commands that post.
	messenger bool
	// archive opens the run archive when it is enabled in config.
	archive bool
}

func wire(ctx context.Context, cfg types.Config, opts wireOptions) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.New()}

	conv, err := convert.New(ctx, cfg.Repository.FullText)
	if err != nil {
		return nil, fmt.Errorf("full-text backend: %w", err)
	}
	a.repo, err = arxiv.New(cfg.Repository, conv, logger)
	if err != nil {
		return nil, err
	}

	models, err := pipeline.BuildModels(cfg.Models, nil)
	if err != nil {
		return nil, err
	}

	a.env = &pipeline.Env{
		Config:  cfg,
		Repo:    a.repo,
		Models:  models,
		Metrics: a.metrics,
		Log:     logger,
	}

	switch {
	case opts.console != nil:
		a.env.Messenger = messaging.NewConsole(opts.console)
	case opts.messenger:
		s, err := messaging.NewSlack(cfg.Slack)
		if err != nil {
			return nil, err
		}
		a.env.Messenger = s
	}

	if opts.archive && cfg.Archive.Enabled {
		a.archive, err = archive.Open(cfg.Archive.Path)
		if err != nil {
			return nil, err
		}
		a.env.Archive = a.archive
	}
	return a, nil
}

// close releases the archive and writes the metrics textfile.
func (a *app) close() {
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing archive")
		}
	}
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("writing metrics")
		}
	}
}
