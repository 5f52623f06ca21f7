// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish posts journal club results to a channel: a top-level
// header followed by the body segments as thread replies, in a fixed order,
// with a pacing delay before each reply.
//
// Messaging is append-only. A failure mid-thread is returned to the caller
// and already posted messages stay where they are.
package publish

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/journal-club/internal/metrics"
	"github.com/pdiddy/journal-club/internal/pacing"
)

// Messenger is the messaging service.
type Messenger interface {
	// ResolveChannel maps a channel name to its id.
	ResolveChannel(ctx context.Context, name string) (string, error)

	// Post sends a top-level message and returns its thread handle.
	Post(ctx context.Context, channelID, text string) (string, error)

	// PostReply sends text into the thread.
	PostReply(ctx context.Context, channelID, thread, text string) error

	// Attach uploads content as a file into the thread.
	Attach(ctx context.Context, channelID, thread, filename, title string, content []byte) error
}

// Attachment is a file uploaded into a thread after its replies.
type Attachment struct {
	Filename string
	Title    string
	Content  []byte
}

// Publisher posts to one resolved channel.
type Publisher struct {
	messenger Messenger
	channelID string
	pacer     pacing.Pacer
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithMetrics counts posted messages in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Publisher) { p.log = log }
}

// New returns a Publisher for channelID. A nil pacer never waits.
func New(m Messenger, channelID string, pacer pacing.Pacer, opts ...Option) *Publisher {
	if pacer == nil {
		pacer = pacing.None{}
	}
	p := &Publisher{messenger: m, channelID: channelID, pacer: pacer, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ChannelID returns the channel the publisher posts to.
func (p *Publisher) ChannelID() string { return p.channelID }

// Publish posts header, then each segment as a reply, then the optional
// attachments. It returns the thread handle, which is set even when a later
// reply failed.
func (p *Publisher) Publish(ctx context.Context, header string, segments []string, attachments ...Attachment) (string, error) {
	thread, err := p.messenger.Post(ctx, p.channelID, header)
	if err != nil {
		return "", fmt.Errorf("posting header: %w", err)
	}
	p.metrics.MessagePosted("header")

	for i, seg := range segments {
		if err := p.pacer.Wait(ctx); err != nil {
			return thread, err
		}
		if err := p.messenger.PostReply(ctx, p.channelID, thread, seg); err != nil {
			return thread, fmt.Errorf("posting reply %d of %d: %w", i+1, len(segments), err)
		}
		p.metrics.MessagePosted("reply")
	}

	for _, a := range attachments {
		if err := p.pacer.Wait(ctx); err != nil {
			return thread, err
		}
		if err := p.messenger.Attach(ctx, p.channelID, thread, a.Filename, a.Title, a.Content); err != nil {
			return thread, fmt.Errorf("attaching %s: %w", a.Filename, err)
		}
		p.metrics.MessagePosted("attachment")
	}
	return thread, nil
}

// Announce posts a top-level message with no thread. kind labels the
// message in metrics ("announcement", "notice").
func (p *Publisher) Announce(ctx context.Context, kind, text string) error {
	if _, err := p.messenger.Post(ctx, p.channelID, text); err != nil {
		return fmt.Errorf("posting %s: %w", kind, err)
	}
	p.metrics.MessagePosted(kind)
	return nil
}
