// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selector picks the day's candidates for discussion.
//
// The whole listing goes into one structured model call. The model's order
// is kept as is. Any failure is fatal for the run: without candidates there
// is nothing to discuss.
package selector

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/journal-club/internal/agent"
	"github.com/pdiddy/journal-club/internal/failure"
	"github.com/pdiddy/journal-club/pkg/types"
)

// Lister returns the papers announced today in a category.
type Lister interface {
	ListToday(ctx context.Context, category string) ([]types.PaperRef, error)
}

// Selector chooses InterestingPapers from the day's listing.
type Selector struct {
	repo  Lister
	agent *agent.Agent
	log   zerolog.Logger
}

// New returns a Selector. a must carry agent.CandidatesSchema.
func New(repo Lister, a *agent.Agent, log zerolog.Logger) *Selector {
	return &Selector{repo: repo, agent: a, log: log}
}

// Select lists category and asks the model for the interesting papers in
// exactly one call. The one exception is an empty listing: it returns no
// candidates and makes no model call, since there is nothing to choose from.
func (s *Selector) Select(ctx context.Context, category string) ([]types.InterestingPaper, error) {
	log := s.log.With().Str("category", category).Logger()

	log.Info().Msg("fetching today's listing")
	papers, err := s.repo.ListToday(ctx, category)
	if err != nil {
		var fe *failure.FetchError
		if !errors.As(err, &fe) {
			err = &failure.FetchError{Op: "listing " + category, Err: err}
		}
		return nil, failure.Fatal(err)
	}
	if len(papers) == 0 {
		log.Info().Msg("no new papers today")
		return nil, nil
	}

	prompt, err := agent.SelectPrompt(papers)
	if err != nil {
		return nil, failure.Fatal(err)
	}

	log.Info().Int("listed", len(papers)).Msg("choosing interesting papers")
	var out agent.Candidates
	if _, err := s.agent.InvokeInto(ctx, agent.Prompt(prompt), &out); err != nil {
		return nil, failure.Fatal(fmt.Errorf("selecting candidates: %w", err))
	}

	log.Info().Int("selected", len(out.Papers)).Msg("candidates selected")
	return out.Papers, nil
}
