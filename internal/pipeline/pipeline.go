// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the repository, the model tiers, the messenger and
// the archive into the daily run: resolve the channel, select candidates,
// then discuss and publish them one at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/journal-club/internal/agent"
	"github.com/pdiddy/journal-club/internal/config"
	"github.com/pdiddy/journal-club/internal/discussion"
	"github.com/pdiddy/journal-club/internal/failure"
	"github.com/pdiddy/journal-club/internal/llm"
	"github.com/pdiddy/journal-club/internal/metrics"
	"github.com/pdiddy/journal-club/internal/pacing"
	"github.com/pdiddy/journal-club/internal/publish"
	"github.com/pdiddy/journal-club/internal/runner"
	"github.com/pdiddy/journal-club/internal/selector"
	"github.com/pdiddy/journal-club/pkg/types"
)

// Repository lists and fetches papers.
type Repository interface {
	selector.Lister
	discussion.FullTextFetcher
}

// Archive keeps the audit trail of runs. Failures are logged, never fatal.
type Archive interface {
	BeginRun(ctx context.Context, id, category string, candidates int) error
	Record(ctx context.Context, runID string, position int, r types.RunResult) error
	FinishRun(ctx context.Context, id string, published, failed int, runErr error) error
}

// Env is everything a run needs. Archive and Metrics are optional.
type Env struct {
	Config    types.Config
	Repo      Repository
	Models    map[types.ModelTier]llm.Model
	Messenger publish.Messenger
	Archive   Archive
	Metrics   *metrics.Metrics
	Log       zerolog.Logger

	newID func() string
	now   func() time.Time
}

// BuildModels creates one model per tier bound to a role.
func BuildModels(cfg types.ModelsConfig, httpClient *http.Client) (map[types.ModelTier]llm.Model, error) {
	models := make(map[types.ModelTier]llm.Model)
	for _, tier := range config.BoundTiers(cfg.Roles) {
		ep, _ := cfg.Endpoint(tier)
		m, err := llm.New(ep, httpClient)
		if err != nil {
			return nil, fmt.Errorf("model tier %s: %w", tier, err)
		}
		models[tier] = m
	}
	return models, nil
}

func (e *Env) model(tier types.ModelTier) (llm.Model, error) {
	m, ok := e.Models[tier]
	if !ok {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}
	return m, nil
}

func (e *Env) agent(role agent.Role, opts ...agent.Option) (*agent.Agent, error) {
	m, err := e.model(role.Tier)
	if err != nil {
		return nil, fmt.Errorf("role %s: %w", role.Name, err)
	}
	opts = append(opts, agent.WithMetrics(e.Metrics), agent.WithLogger(e.Log))
	return agent.New(role, m, opts...), nil
}

// Selector builds the candidate selector.
func (e *Env) Selector() (*selector.Selector, error) {
	a, err := e.agent(agent.Selector(e.Config.Interests, e.Config.Models.Roles.Selector), agent.WithSchema(agent.CandidatesSchema))
	if err != nil {
		return nil, err
	}
	return selector.New(e.Repo, a, e.Log), nil
}

// Orchestrator builds the discussion orchestrator.
func (e *Env) Orchestrator() (*discussion.Orchestrator, error) {
	roles := e.Config.Models.Roles
	interests := e.Config.Interests

	student, err := e.agent(agent.Student(interests, roles.Student))
	if err != nil {
		return nil, err
	}
	postdoc, err := e.agent(agent.Postdoc(interests, roles.Postdoc))
	if err != nil {
		return nil, err
	}
	staff, err := e.agent(agent.Staff(interests, roles.Staff))
	if err != nil {
		return nil, err
	}
	translator, err := e.agent(agent.Translator(roles.Translator), agent.WithSchema(agent.DiscussionSchema))
	if err != nil {
		return nil, err
	}

	return discussion.NewOrchestrator(e.Repo, discussion.Agents{
		Student:    student,
		Postdoc:    postdoc,
		Staff:      staff,
		Translator: translator,
	}, e.Log)
}

// Publisher resolves the configured channel and returns a publisher for it.
// A resolution failure is fatal.
func (e *Env) Publisher(ctx context.Context) (*publish.Publisher, error) {
	channel := e.Config.Slack.Channel
	id, err := e.Messenger.ResolveChannel(ctx, channel)
	if err != nil {
		if !errors.Is(err, failure.ErrChannelResolution) && ctx.Err() == nil {
			err = &failure.ChannelResolutionError{Channel: channel, Err: err}
		}
		return nil, failure.Fatal(err)
	}
	e.Log.Debug().Str("channel", channel).Str("channel_id", id).Msg("resolved channel")
	return publish.New(e.Messenger, id, pacing.NewInterval(e.Config.Pacing.ReplyInterval),
		publish.WithMetrics(e.Metrics), publish.WithLogger(e.Log)), nil
}

// Options adjust one daily run.
type Options struct {
	// Candidates replaces selection when non-nil.
	Candidates []types.InterestingPaper

	// MaxPapers caps the number of candidates processed; 0 means no cap.
	MaxPapers int
}

// Report describes a finished (or aborted) run.
type Report struct {
	RunID      string
	Candidates []types.InterestingPaper
	Summary    runner.Summary
	Duration   time.Duration
}

// RunDaily performs one journal club run. The returned error is non-nil only
// for fatal failures; per-paper failures are in the report summary.
func (e *Env) RunDaily(ctx context.Context, opts Options) (report Report, err error) {
	newID, now := e.newID, e.now
	if newID == nil {
		newID = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}

	start := now()
	report = Report{RunID: newID()}
	log := e.Log.With().Str("run_id", report.RunID).Logger()
	defer func() {
		report.Duration = now().Sub(start)
		e.Metrics.RunFinished(report.Duration)
	}()

	pub, err := e.Publisher(ctx)
	if err != nil {
		log.Error().Err(err).Msg("resolving channel")
		return report, err
	}

	orch, err := e.Orchestrator()
	if err != nil {
		return report, failure.Fatal(err)
	}

	candidates := opts.Candidates
	if candidates == nil {
		sel, err := e.Selector()
		if err != nil {
			return report, failure.Fatal(err)
		}
		candidates, err = sel.Select(ctx, e.Config.Repository.Category)
		if err != nil {
			log.Error().Err(err).Msg("selecting candidates")
			return report, err
		}
	}
	if opts.MaxPapers > 0 && len(candidates) > opts.MaxPapers {
		log.Info().Int("selected", len(candidates)).Int("max_papers", opts.MaxPapers).Msg("capping candidates")
		candidates = candidates[:opts.MaxPapers]
	}
	report.Candidates = candidates
	e.Metrics.Candidates(len(candidates))

	runOpts := []runner.Option{
		runner.WithCategory(e.Config.Repository.Category),
		runner.WithTranscripts(e.Config.Slack.AttachTranscript),
		runner.WithMetrics(e.Metrics),
		runner.WithLogger(log),
	}
	archived := false
	if e.Archive != nil {
		if err := e.Archive.BeginRun(ctx, report.RunID, e.Config.Repository.Category, len(candidates)); err != nil {
			log.Warn().Err(err).Msg("archiving run")
		} else {
			archived = true
			runOpts = append(runOpts, runner.WithRecorder(archiveRecorder{e.Archive, report.RunID}))
		}
	}

	rn := runner.New(orch, pub, pacing.NewInterval(e.Config.Pacing.DiscussionInterval), runOpts...)
	report.Summary, err = rn.Run(ctx, candidates)

	if archived {
		// The run may have been aborted by cancellation; finish the row anyway.
		fctx := context.WithoutCancel(ctx)
		if ferr := e.Archive.FinishRun(fctx, report.RunID, report.Summary.Published, report.Summary.Failed, err); ferr != nil {
			log.Warn().Err(ferr).Msg("finishing archived run")
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("run aborted")
		return report, err
	}
	return report, nil
}

// archiveRecorder adapts Archive to runner.Recorder for one run.
type archiveRecorder struct {
	archive Archive
	runID   string
}

func (r archiveRecorder) Record(ctx context.Context, position int, result types.RunResult) error {
	return r.archive.Record(ctx, r.runID, position, result)
}

// Discuss runs the discussion and translation of a single paper.
func (e *Env) Discuss(ctx context.Context, id string) (types.BilingualDiscussion, error) {
	orch, err := e.Orchestrator()
	if err != nil {
		return types.BilingualDiscussion{}, err
	}
	return orch.Run(ctx, id)
}
