// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package messaging

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console writes messages to w instead of posting them. Every channel name
// resolves, to "console:<name>".
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	thread int
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// ResolveChannel always succeeds.
func (c *Console) ResolveChannel(_ context.Context, name string) (string, error) {
	return "console:" + strings.TrimPrefix(name, "#"), nil
}

// Post prints a top-level message.
func (c *Console) Post(ctx context.Context, channelID, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.thread++
	thread := fmt.Sprintf("%d", c.thread)
	_, err := fmt.Fprintf(c.w, "=== [%s] #%s\n%s\n\n", channelID, thread, text)
	return thread, err
}

// PostReply prints an indented reply.
func (c *Console) PostReply(ctx context.Context, channelID, thread, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "  --- [%s] reply to #%s\n%s\n\n", channelID, thread, indent(text, "  "))
	return err
}

// Attach prints the attachment name and size.
func (c *Console) Attach(ctx context.Context, channelID, thread, filename, title string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "  --- [%s] attachment to #%s: %s (%s, %d bytes)\n\n", channelID, thread, filename, title, len(content))
	return err
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
