// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discussion runs the journal club for one paper.
//
// Stages run strictly in order: fetch the full text, the student summarizes
// it, the postdoc critiques the summary, staff answers the critique, and the
// translator renders all three parts in Japanese. The postdoc starts from a
// fresh conversation holding only the summary text. Staff continues the
// student's conversation with the critique appended as one user turn.
//
// Any stage failure fails the whole paper; no stage output is reused after
// a later stage fails.
package discussion

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/journal-club/internal/agent"
	"github.com/pdiddy/journal-club/internal/failure"
	"github.com/pdiddy/journal-club/pkg/types"
)

// Stage names reported with per-paper errors.
const (
	StageFetch     = "fetch"
	StageSummarize = "summarize"
	StageCritique  = "critique"
	StageRespond   = "respond"
	StageTranslate = "translate"
)

// FullTextFetcher returns the full text of a paper.
type FullTextFetcher interface {
	FetchFullText(ctx context.Context, id string) (string, error)
}

// Agents are the four personas of the discussion. Translator must carry
// agent.DiscussionSchema.
type Agents struct {
	Student    *agent.Agent
	Postdoc    *agent.Agent
	Staff      *agent.Agent
	Translator *agent.Agent
}

// Orchestrator drives the stages for one paper at a time.
type Orchestrator struct {
	repo   FullTextFetcher
	agents Agents
	log    zerolog.Logger
}

// NewOrchestrator checks that every agent is present and that the postdoc
// is bound to a different model tier than the student.
func NewOrchestrator(repo FullTextFetcher, agents Agents, log zerolog.Logger) (*Orchestrator, error) {
	if repo == nil {
		return nil, errors.New("discussion: repository is required")
	}
	if agents.Student == nil || agents.Postdoc == nil || agents.Staff == nil || agents.Translator == nil {
		return nil, errors.New("discussion: student, postdoc, staff and translator agents are required")
	}
	if tier := agents.Student.Role().Tier; agents.Postdoc.Role().Tier == tier {
		return nil, fmt.Errorf("discussion: postdoc and student share model tier %s", tier)
	}
	return &Orchestrator{repo: repo, agents: agents, log: log}, nil
}

// Discuss runs fetch, summarize, critique and respond for id.
func (o *Orchestrator) Discuss(ctx context.Context, id string) (types.PaperDiscussion, error) {
	log := o.log.With().Str("paper_id", id).Logger()

	log.Info().Str("stage", StageFetch).Msg("reading the paper")
	fullText, err := o.repo.FetchFullText(ctx, id)
	if err != nil {
		return types.PaperDiscussion{}, failure.Item(id, StageFetch, err)
	}

	prompt, err := agent.SummarizePrompt(id, fullText)
	if err != nil {
		return types.PaperDiscussion{}, failure.Item(id, StageSummarize, err)
	}
	log.Info().Str("stage", StageSummarize).Msg("summarizing")
	summary, err := o.agents.Student.Invoke(ctx, agent.Prompt(prompt))
	if err != nil {
		return types.PaperDiscussion{}, failure.Item(id, StageSummarize, err)
	}

	prompt, err = agent.CritiquePrompt(summary.Text)
	if err != nil {
		return types.PaperDiscussion{}, failure.Item(id, StageCritique, err)
	}
	log.Info().Str("stage", StageCritique).Msg("criticizing the summary")
	critique, err := o.agents.Postdoc.Invoke(ctx, agent.Prompt(prompt))
	if err != nil {
		return types.PaperDiscussion{}, failure.Item(id, StageCritique, err)
	}

	log.Info().Str("stage", StageRespond).Msg("answering the feedback")
	answer, err := o.agents.Staff.Invoke(ctx, agent.Continue(summary.History, agent.FeedbackTurn(critique.Text)))
	if err != nil {
		return types.PaperDiscussion{}, failure.Item(id, StageRespond, err)
	}

	return types.PaperDiscussion{
		DetailedSummary: summary.Text,
		Criticize:       critique.Text,
		Answer:          answer.Text,
	}, nil
}

// Translate renders all three parts of d in one structured call. The result
// is either complete or an error.
func (o *Orchestrator) Translate(ctx context.Context, id string, d types.PaperDiscussion) (types.BilingualDiscussion, error) {
	prompt, err := agent.TranslatePrompt(d)
	if err != nil {
		return types.BilingualDiscussion{}, failure.Item(id, StageTranslate, err)
	}

	o.log.Info().Str("paper_id", id).Str("stage", StageTranslate).Msg("translating into Japanese")
	var translated types.PaperDiscussion
	if _, err := o.agents.Translator.InvokeInto(ctx, agent.Prompt(prompt), &translated); err != nil {
		return types.BilingualDiscussion{}, failure.Item(id, StageTranslate, err)
	}
	return types.BilingualDiscussion{Original: d, Translated: translated}, nil
}

// Run discusses and translates id.
func (o *Orchestrator) Run(ctx context.Context, id string) (types.BilingualDiscussion, error) {
	d, err := o.Discuss(ctx, id)
	if err != nil {
		return types.BilingualDiscussion{}, err
	}
	return o.Translate(ctx, id, d)
}
