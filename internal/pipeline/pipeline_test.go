// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/journal-club/internal/agent"
	"github.com/pdiddy/journal-club/internal/failure"
	"github.com/pdiddy/journal-club/internal/llm"
	"github.com/pdiddy/journal-club/internal/llm/llmtest"
	"github.com/pdiddy/journal-club/internal/messaging/messagingtest"
	"github.com/pdiddy/journal-club/internal/metrics"
	"github.com/pdiddy/journal-club/pkg/types"
)

const (
	channelName = "journal-club"
	channelID   = "C0001"
)

// fakeRepo lists a fixed day and fails full-text fetches for ids in missing.
type fakeRepo struct {
	mu      sync.Mutex
	listing []types.PaperRef
	listErr error
	missing map[string]bool
	lists   int
	fetches []string
}

func (r *fakeRepo) ListToday(context.Context, string) ([]types.PaperRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	return r.listing, r.listErr
}

func (r *fakeRepo) FetchFullText(_ context.Context, id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches = append(r.fetches, id)
	if r.missing[id] {
		return "", &failure.NotFoundError{ID: id}
	}
	return "full text of " + id, nil
}

// fakeArchive records calls in memory.
type fakeArchive struct {
	mu       sync.Mutex
	begun    []string
	records  map[int]types.RunResult
	finished bool
	runErr   error
}

func (a *fakeArchive) BeginRun(_ context.Context, id, _ string, _ int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.begun = append(a.begun, id)
	a.records = map[int]types.RunResult{}
	return nil
}

func (a *fakeArchive) Record(_ context.Context, _ string, position int, r types.RunResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records[position] = r
	return nil
}

func (a *fakeArchive) FinishRun(_ context.Context, _ string, _, _ int, runErr error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.finished = true
	a.runErr = runErr
	return nil
}

func ref(id string) types.PaperRef {
	return types.PaperRef{ID: id, Title: "Paper " + id, Authors: []string{"A. Author"}, PrimaryCategory: "hep-ph"}
}

func candidate(id string) types.InterestingPaper {
	return types.InterestingPaper{
		ID: id, Title: "Paper " + id, Authors: []string{"A. Author", "B. Author"},
		ReasonEN: "new idea", ReasonJA: "新しいアイデア", PrimaryCategory: "hep-ph",
	}
}

const candidatesJSON = `{"papers":[
 {"arxiv_id":"2501.00001","title":"Paper 2501.00001","authors":["A. Author"],"reason_en":"a","reason_ja":"あ","primary_category":"hep-ph"},
 {"arxiv_id":"2501.00002","title":"Paper 2501.00002","authors":["A. Author"],"reason_en":"b","reason_ja":"い","primary_category":"hep-ph"}
]}`

const translationJSON = `{"detailed_summary":"要約","criticize":"批判","answer":"回答"}`

// fastReply answers every fast-tier role: selector, student, staff, translator.
func fastReply(req llm.Request) (string, error) {
	if req.Schema != nil {
		switch req.Schema.Name {
		case agent.CandidatesSchema.Name:
			return candidatesJSON, nil
		case agent.DiscussionSchema.Name:
			return translationJSON, nil
		}
	}
	if strings.Contains(req.Instructions, "staff researcher") {
		return "ANSWER", nil
	}
	return "SUMMARY", nil
}

type fixture struct {
	repo      *fakeRepo
	fast      *llmtest.Model
	balanced  *llmtest.Model
	messenger *messagingtest.Messenger
	archive   *fakeArchive
	env       *Env
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      &fakeRepo{listing: []types.PaperRef{ref("2501.00001"), ref("2501.00002")}},
		fast:      &llmtest.Model{ModelName: "fast", Reply: fastReply},
		balanced:  llmtest.Text("balanced", "CRITIQUE"),
		messenger: messagingtest.New(channelName, channelID),
		archive:   &fakeArchive{},
	}
	f.env = &Env{
		Config: types.Config{
			Repository: types.RepositoryConfig{Category: "hep-ph"},
			Models: types.ModelsConfig{Roles: types.RoleBindings{
				Selector: types.TierFast, Student: types.TierFast, Postdoc: types.TierBalanced,
				Staff: types.TierFast, Translator: types.TierFast,
			}},
			Slack: types.SlackConfig{Channel: channelName},
		},
		Repo:      f.repo,
		Models:    map[types.ModelTier]llm.Model{types.TierFast: f.fast, types.TierBalanced: f.balanced},
		Messenger: f.messenger,
		Archive:   f.archive,
		Metrics:   metrics.New(),
		Log:       zerolog.Nop(),
		newID:     func() string { return "run-1" },
		now:       func() time.Time { return time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC) },
	}
	return f
}

func (f *fixture) modelCalls() int { return f.fast.Calls() + f.balanced.Calls() }

func TestRunDaily_Publishes(t *testing.T) {
	f := newFixture(t)

	report, err := f.env.RunDaily(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	require.Len(t, report.Candidates, 2)
	assert.Equal(t, 2, report.Summary.Published)
	assert.Equal(t, 0, report.Summary.Failed)

	top := f.messenger.TopLevel()
	require.Len(t, top, 3, "batch header plus one thread per paper")
	assert.Contains(t, top[0].Text, "2 papers selected")
	for _, msg := range top[1:] {
		replies := f.messenger.Replies(msg.Thread)
		require.Len(t, replies, 7)
		assert.Equal(t, "*要約*\n要約", replies[1].Text)
		assert.Equal(t, "*Questions and feedback*\nCRITIQUE", replies[5].Text)
		assert.Equal(t, "*Answers*\nANSWER", replies[6].Text)
	}

	// One selection, then student, staff and translator per paper on fast;
	// the postdoc per paper on balanced.
	assert.Equal(t, 1+2*3, f.fast.Calls())
	assert.Equal(t, 2, f.balanced.Calls())

	assert.Equal(t, []string{"run-1"}, f.archive.begun)
	assert.True(t, f.archive.finished)
	assert.NoError(t, f.archive.runErr)
	assert.Len(t, f.archive.records, 2)
}

func TestRunDaily_FailureIsolation(t *testing.T) {
	f := newFixture(t)
	f.repo.missing = map[string]bool{"2501.00001": true}

	report, err := f.env.RunDaily(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.Published)
	assert.Equal(t, 1, report.Summary.Failed)
	require.Len(t, report.Summary.Errors, 1)
	assert.Equal(t, "2501.00001", report.Summary.Errors[0].PaperID)
	assert.Equal(t, "fetch", report.Summary.Errors[0].Stage)

	var notices, threads int
	for _, msg := range f.messenger.TopLevel() {
		switch {
		case strings.HasPrefix(msg.Text, "Error processing"):
			notices++
			assert.Contains(t, msg.Text, "2501.00001")
		case strings.Contains(msg.Text, "Paper 2501.00002"):
			threads++
			assert.Len(t, f.messenger.Replies(msg.Thread), 7)
		}
	}
	assert.Equal(t, 1, notices)
	assert.Equal(t, 1, threads)

	assert.Equal(t, []string{"2501.00001", "2501.00002"}, f.repo.fetches)
	assert.True(t, f.archive.records[0].Failed())
	assert.False(t, f.archive.records[1].Failed())
}

func TestRunDaily_ChannelResolutionIsFatal(t *testing.T) {
	f := newFixture(t)
	f.env.Config.Slack.Channel = "no-such-channel"

	_, err := f.env.RunDaily(context.Background(), Options{})
	require.Error(t, err)
	assert.True(t, failure.IsFatal(err))
	assert.True(t, errors.Is(err, failure.ErrChannelResolution))

	assert.Zero(t, f.modelCalls(), "no model call before the channel is known")
	assert.Zero(t, f.repo.lists)
	assert.Empty(t, f.messenger.Messages())
	assert.Empty(t, f.archive.begun)
}

func TestRunDaily_SelectionFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.repo.listErr = errors.New("connection refused")

	_, err := f.env.RunDaily(context.Background(), Options{})
	require.Error(t, err)
	assert.True(t, failure.IsFatal(err))
	assert.True(t, errors.Is(err, failure.ErrFetch))
	assert.Zero(t, f.modelCalls())
	assert.Empty(t, f.messenger.Messages())
}

func TestRunDaily_ProvidedCandidates(t *testing.T) {
	f := newFixture(t)

	report, err := f.env.RunDaily(context.Background(), Options{
		Candidates: []types.InterestingPaper{candidate("2501.00003"), candidate("2501.00004"), candidate("2501.00005")},
		MaxPapers:  2,
	})
	require.NoError(t, err)

	assert.Zero(t, f.repo.lists, "provided candidates skip selection")
	require.Len(t, report.Candidates, 2)
	assert.Equal(t, "2501.00004", report.Candidates[1].ID)
	assert.Equal(t, []string{"2501.00003", "2501.00004"}, f.repo.fetches)
	assert.Equal(t, 2, report.Summary.Published)
}

func TestRunDaily_EmptyDay(t *testing.T) {
	f := newFixture(t)
	f.repo.listing = nil

	report, err := f.env.RunDaily(context.Background(), Options{})
	require.NoError(t, err)
	assert.Zero(t, report.Summary.Total())
	assert.Zero(t, f.modelCalls())

	top := f.messenger.TopLevel()
	require.Len(t, top, 1)
	assert.Contains(t, top[0].Text, "0 papers selected")
}

func TestRunDaily_CancelledFinishesArchive(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.balanced.Reply = func(llm.Request) (string, error) {
		cancel()
		return "", context.Canceled
	}

	_, err := f.env.RunDaily(ctx, Options{})
	require.Error(t, err)
	assert.True(t, failure.IsFatal(err))
	assert.True(t, f.archive.finished)
	assert.Error(t, f.archive.runErr)
	for _, msg := range f.messenger.TopLevel() {
		assert.NotContains(t, msg.Text, "Error processing", "cancellation is not a per-paper failure")
	}
}

func TestDiscuss(t *testing.T) {
	f := newFixture(t)

	d, err := f.env.Discuss(context.Background(), "2501.00009")
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY", d.Original.DetailedSummary)
	assert.Equal(t, "CRITIQUE", d.Original.Criticize)
	assert.Equal(t, "ANSWER", d.Original.Answer)
	assert.Equal(t, "回答", d.Translated.Answer)
}

func TestMissingTierModel(t *testing.T) {
	f := newFixture(t)
	delete(f.env.Models, types.TierBalanced)

	_, err := f.env.Orchestrator()
	assert.ErrorContains(t, err, "role postdoc: no model configured for tier balanced")
}

func TestSharedCriticTierIsFatal(t *testing.T) {
	f := newFixture(t)
	f.env.Config.Models.Roles.Postdoc = types.TierFast

	_, err := f.env.Orchestrator()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postdoc and student share model tier fast")

	_, err = f.env.RunDaily(context.Background(), Options{})
	require.Error(t, err)
	assert.True(t, failure.IsFatal(err))
	assert.Zero(t, f.modelCalls())
	assert.Empty(t, f.archive.begun)
}

func TestBuildModels(t *testing.T) {
	models, err := BuildModels(types.ModelsConfig{
		Fast:     types.ModelEndpoint{Provider: types.ProviderOpenAI, Model: "gpt-4o-mini", APIKey: "k"},
		Balanced: types.ModelEndpoint{Provider: types.ProviderAnthropic, Model: "claude-sonnet-4-5", APIKey: "k"},
		Deep:     types.ModelEndpoint{Provider: "unused"},
		Roles: types.RoleBindings{
			Selector: types.TierFast, Student: types.TierFast, Postdoc: types.TierBalanced,
			Staff: types.TierFast, Translator: types.TierFast,
		},
	}, nil)
	require.NoError(t, err)
	assert.Len(t, models, 2)
	assert.Contains(t, models, types.TierFast)
	assert.Contains(t, models, types.TierBalanced)

	_, err = BuildModels(types.ModelsConfig{
		Fast:  types.ModelEndpoint{Provider: "bard"},
		Roles: types.RoleBindings{Selector: types.TierFast, Student: types.TierFast, Postdoc: types.TierFast, Staff: types.TierFast, Translator: types.TierFast},
	}, nil)
	assert.ErrorContains(t, err, `unknown model provider "bard"`)
}
