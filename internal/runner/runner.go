// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runner drives the discussion of a candidate list.
//
// Candidates are processed strictly one after another in input order: each
// paper is discussed, translated and published before the next one starts,
// and the pacer is waited on before every discussion. A per-paper failure is
// published as an error notice and the batch continues. Only fatal errors
// (cancellation, channel loss) stop the batch.
package runner

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/journal-club/internal/failure"
	"github.com/pdiddy/journal-club/internal/metrics"
	"github.com/pdiddy/journal-club/internal/pacing"
	"github.com/pdiddy/journal-club/internal/publish"
	"github.com/pdiddy/journal-club/pkg/types"
)

// StagePublish is the stage reported when a discussion could not be posted.
const StagePublish = "publish"

// Discusser produces the bilingual discussion of one paper.
type Discusser interface {
	Run(ctx context.Context, id string) (types.BilingualDiscussion, error)
}

// Sink publishes to the channel.
type Sink interface {
	Announce(ctx context.Context, kind, text string) error
	Publish(ctx context.Context, header string, segments []string, attachments ...publish.Attachment) (string, error)
}

// Recorder keeps an audit trail of results. Record errors are logged and
// never affect the batch.
type Recorder interface {
	Record(ctx context.Context, position int, result types.RunResult) error
}

// Summary holds the outcome of a batch.
type Summary struct {
	Published int
	Failed    int
	Errors    []types.ErrorRecord
}

// Total returns the number of candidates processed.
func (s Summary) Total() int { return s.Published + s.Failed }

// HasFailures reports whether any candidate failed.
func (s Summary) HasFailures() bool { return s.Failed > 0 }

// Runner processes candidates one at a time.
type Runner struct {
	discusser   Discusser
	sink        Sink
	pacer       pacing.Pacer
	recorder    Recorder
	category    string
	transcripts bool
	metrics     *metrics.Metrics
	log         zerolog.Logger
	now         func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder records every result.
func WithRecorder(r Recorder) Option { return func(rn *Runner) { rn.recorder = r } }

// WithCategory names the category in the batch header.
func WithCategory(c string) Option { return func(rn *Runner) { rn.category = c } }

// WithTranscripts attaches a Markdown transcript to every thread.
func WithTranscripts(on bool) Option { return func(rn *Runner) { rn.transcripts = on } }

// WithMetrics records outcomes in m.
func WithMetrics(m *metrics.Metrics) Option { return func(rn *Runner) { rn.metrics = m } }

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option { return func(rn *Runner) { rn.log = log } }

// New returns a Runner. A nil pacer never waits.
func New(d Discusser, sink Sink, pacer pacing.Pacer, opts ...Option) *Runner {
	if pacer == nil {
		pacer = pacing.None{}
	}
	r := &Runner{discusser: d, sink: sink, pacer: pacer, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run posts the batch header and then processes candidates in order. The
// returned error is non-nil only for fatal failures; the summary then covers
// the candidates finished before the abort.
func (r *Runner) Run(ctx context.Context, candidates []types.InterestingPaper) (Summary, error) {
	var summary Summary

	if err := r.sink.Announce(ctx, "announcement", publish.BatchHeader(r.category, r.now(), len(candidates))); err != nil {
		if failure.IsFatal(err) || ctx.Err() != nil {
			return summary, failure.Fatal(err)
		}
		r.log.Error().Err(err).Msg("posting batch header")
	}

	for i, paper := range candidates {
		if err := r.pacer.Wait(ctx); err != nil {
			return summary, failure.Fatal(err)
		}

		result, err := r.process(ctx, paper)
		if err != nil {
			return summary, err
		}

		if result.Failed() {
			summary.Failed++
			summary.Errors = append(summary.Errors, *result.Err)
			r.metrics.PaperProcessed("failed")
		} else {
			summary.Published++
			r.metrics.PaperProcessed("published")
		}

		if r.recorder != nil {
			if err := r.recorder.Record(ctx, i, result); err != nil {
				r.log.Warn().Err(err).Str("paper_id", paper.ID).Msg("recording result")
			}
		}
	}

	r.log.Info().
		Int("published", summary.Published).
		Int("failed", summary.Failed).
		Int("total", summary.Total()).
		Msg("batch finished")
	return summary, nil
}

// process discusses and publishes one paper. Per-paper failures are
// returned inside the RunResult; only fatal errors are returned as error.
func (r *Runner) process(ctx context.Context, paper types.InterestingPaper) (types.RunResult, error) {
	log := r.log.With().Str("paper_id", paper.ID).Logger()
	result := types.RunResult{Paper: paper}

	d, err := r.discusser.Run(ctx, paper.ID)
	if err != nil {
		if failure.IsFatal(err) || ctx.Err() != nil {
			return result, failure.Fatal(err)
		}
		result.Err = errorRecord(paper.ID, err)
		log.Error().Err(err).Str("stage", result.Err.Stage).Msg("discussion failed")

		return result, r.notify(ctx, log, result.Err)
	}
	result.Discussion = &d

	var attachments []publish.Attachment
	if r.transcripts {
		attachments = append(attachments, publish.Attachment{
			Filename: publish.TranscriptFilename(paper.ID),
			Title:    paper.Title,
			Content:  publish.Transcript(paper, d),
		})
	}

	if _, err := r.sink.Publish(ctx, publish.Header(paper), publish.Segments(d), attachments...); err != nil {
		if failure.IsFatal(err) || ctx.Err() != nil {
			return result, failure.Fatal(err)
		}
		result.Err = &types.ErrorRecord{PaperID: paper.ID, Stage: StagePublish, Message: err.Error()}
		log.Error().Err(err).Str("stage", StagePublish).Msg("publishing failed")
		return result, r.notify(ctx, log, result.Err)
	}

	log.Info().Msg("published")
	return result, nil
}

// notify posts the error notice for a failed paper. A notice that cannot be
// posted is logged; only a fatal failure is returned.
func (r *Runner) notify(ctx context.Context, log zerolog.Logger, rec *types.ErrorRecord) error {
	err := r.sink.Announce(ctx, "notice", publish.Notice(rec.PaperID, rec.Message))
	if err == nil {
		return nil
	}
	if failure.IsFatal(err) || ctx.Err() != nil {
		return failure.Fatal(err)
	}
	log.Error().Err(err).Msg("posting error notice")
	return nil
}

func errorRecord(id string, err error) *types.ErrorRecord {
	rec := &types.ErrorRecord{PaperID: id, Message: failure.Message(err)}
	var ie *failure.ItemError
	if errors.As(err, &ie) {
		rec.Stage = ie.Stage
	}
	return rec
}
