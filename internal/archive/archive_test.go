// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/journal-club/pkg/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "archive", "journal-club.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func paper(id, title string) types.InterestingPaper {
	return types.InterestingPaper{
		ID:              id,
		Title:           title,
		Authors:         []string{"Alice Smith", "Bob Jones"},
		ReasonEN:        "Relevant to frustrated magnets.",
		ReasonJA:        "フラストレート磁性体に関連。",
		PrimaryCategory: "cond-mat.str-el",
	}
}

func discussion(tag string) *types.BilingualDiscussion {
	return &types.BilingualDiscussion{
		Original:   types.PaperDiscussion{DetailedSummary: tag + " summary", Criticize: tag + " critique", Answer: tag + " answer"},
		Translated: types.PaperDiscussion{DetailedSummary: tag + " 要約", Criticize: tag + " 質問", Answer: tag + " 回答"},
	}
}

func recordSampleRun(t *testing.T, s *Store, id string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.BeginRun(ctx, id, "cond-mat.str-el", 3))

	rec := s.Recorder(id)
	require.NoError(t, rec.Record(ctx, 0, types.RunResult{
		Paper: paper("2501.00001", "Fetch Fails"),
		Err:   &types.ErrorRecord{PaperID: "2501.00001", Stage: "fetch", Message: "paper 2501.00001 not found"},
	}))
	require.NoError(t, rec.Record(ctx, 1, types.RunResult{
		Paper:      paper("2501.00002", "Spin **Liquids**"),
		Discussion: discussion("p2"),
	}))
	require.NoError(t, rec.Record(ctx, 2, types.RunResult{
		Paper:      paper("2501.00003", "Posting Fails"),
		Discussion: discussion("p3"),
		Err:        &types.ErrorRecord{PaperID: "2501.00003", Stage: "publish", Message: "slack: rate limited"},
	}))
	require.NoError(t, s.FinishRun(ctx, id, 1, 2, nil))
}

func TestRecordAndRead(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	recordSampleRun(t, s, "run-1")

	run, err := s.Run(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "cond-mat.str-el", run.Category)
	assert.Equal(t, 3, run.Candidates)
	assert.Equal(t, 1, run.Published)
	assert.Equal(t, 2, run.Failed)
	assert.Empty(t, run.Error)
	assert.True(t, run.FinishedAt.After(run.StartedAt))

	results, err := s.Results(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Equal(t, "fetch", results[0].Stage)
	assert.Nil(t, results[0].Discussion)

	assert.Equal(t, StatusPublished, results[1].Status)
	require.NotNil(t, results[1].Discussion)
	assert.Equal(t, *discussion("p2"), *results[1].Discussion)
	assert.Equal(t, paper("2501.00002", "Spin **Liquids**"), results[1].Paper)

	assert.Equal(t, StatusFailed, results[2].Status)
	assert.Equal(t, "publish", results[2].Stage)
	assert.NotNil(t, results[2].Discussion, "discussion kept when only posting failed")
}

func TestRunsNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.BeginRun(ctx, "older", "hep-th", 0))
	require.NoError(t, s.BeginRun(ctx, "newer", "hep-th", 0))
	require.NoError(t, s.FinishRun(ctx, "newer", 0, 0, errors.New("channel not found")))

	runs, err := s.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "newer", runs[0].ID)
	assert.Equal(t, "channel not found", runs[0].Error)
	assert.True(t, runs[1].FinishedAt.IsZero(), "unfinished run has no finish time")

	limited, err := s.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestMissingRun(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.Run(ctx, "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	err = s.FinishRun(ctx, "nope", 0, 0, nil)
	assert.ErrorIs(t, err, ErrRunNotFound)

	err = s.Record(ctx, "nope", 0, types.RunResult{Paper: paper("2501.00001", "x")})
	assert.Error(t, err, "results reference an existing run")
}

func TestExport(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	recordSampleRun(t, s, "run-1")

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Export(ctx, "run-1", FormatYAML, &buf))

		var got RunExport
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "run-1", got.Run.ID)
		require.Len(t, got.Results, 3)
		assert.Equal(t, "2501.00002", got.Results[1].Paper.ID)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Export(ctx, "run-1", FormatJSON, &buf))

		var got RunExport
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, 1, got.Run.Published)
		assert.Equal(t, "p2 要約", got.Results[1].Discussion.Translated.DetailedSummary)
	})

	t.Run("html", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Export(ctx, "run-1", FormatHTML, &buf))
		out := buf.String()

		assert.Contains(t, out, "<!DOCTYPE html>")
		assert.Contains(t, out, "<strong>Liquids</strong>")
		assert.Contains(t, out, "<h2>日本語</h2>")
		assert.Contains(t, out, `<a href="https://arxiv.org/abs/2501.00001">Fetch Fails</a>`)
		assert.Contains(t, out, "Failed at fetch: paper 2501.00001 not found")
	})

	t.Run("unknown format", func(t *testing.T) {
		err := s.Export(ctx, "run-1", "csv", &bytes.Buffer{})
		assert.ErrorContains(t, err, `unknown export format "csv"`)
	})

	t.Run("unknown run", func(t *testing.T) {
		err := s.Export(ctx, "nope", FormatJSON, &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrRunNotFound)
	})
}
