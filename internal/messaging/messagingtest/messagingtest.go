// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package messagingtest provides an in-memory messenger that records posts.
package messagingtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/pdiddy/journal-club/internal/failure"
)

// Message is one recorded post. Thread is empty for top-level messages.
type Message struct {
	Channel  string
	Thread   string
	Text     string
	Filename string
}

// Messenger records posts in memory.
type Messenger struct {
	// Channels maps names to ids; unknown names fail resolution.
	Channels map[string]string

	// FailReply, when set, is consulted before each reply.
	FailReply func(thread, text string) error

	mu       sync.Mutex
	messages []Message
	resolves int
	next     int
}

// New returns a Messenger knowing the given channel name and id.
func New(name, id string) *Messenger {
	return &Messenger{Channels: map[string]string{name: id}}
}

// ResolveChannel looks name up in Channels.
func (m *Messenger) ResolveChannel(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolves++
	if id, ok := m.Channels[name]; ok {
		return id, nil
	}
	return "", &failure.ChannelResolutionError{Channel: name}
}

// Post records a top-level message.
func (m *Messenger) Post(ctx context.Context, channelID, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.messages = append(m.messages, Message{Channel: channelID, Text: text})
	return fmt.Sprintf("%d.000100", m.next), nil
}

// PostReply records a reply.
func (m *Messenger) PostReply(ctx context.Context, channelID, thread, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.FailReply != nil {
		if err := m.FailReply(thread, text); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Channel: channelID, Thread: thread, Text: text})
	return nil
}

// Attach records an attachment.
func (m *Messenger) Attach(ctx context.Context, channelID, thread, filename, _ string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Channel: channelID, Thread: thread, Text: string(content), Filename: filename})
	return nil
}

// Messages returns every recorded message in order.
func (m *Messenger) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

// TopLevel returns the top-level messages in order.
func (m *Messenger) TopLevel() []Message {
	var out []Message
	for _, msg := range m.Messages() {
		if msg.Thread == "" {
			out = append(out, msg)
		}
	}
	return out
}

// Replies returns the replies (not attachments) to thread in order.
func (m *Messenger) Replies(thread string) []Message {
	var out []Message
	for _, msg := range m.Messages() {
		if msg.Thread == thread && msg.Filename == "" {
			out = append(out, msg)
		}
	}
	return out
}

// Resolves returns how many channel resolutions were attempted.
func (m *Messenger) Resolves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolves
}
