// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package messaging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	ctx := context.Background()

	id, err := c.ResolveChannel(ctx, "#journal-club")
	require.NoError(t, err)
	assert.Equal(t, "console:journal-club", id)

	thread, err := c.Post(ctx, id, "header")
	require.NoError(t, err)
	require.NoError(t, c.PostReply(ctx, id, thread, "line one\nline two"))
	require.NoError(t, c.Attach(ctx, id, thread, "2501.00001-discussion.md", "Transcript", []byte("abc")))

	out := buf.String()
	assert.Contains(t, out, "=== [console:journal-club] #1\nheader")
	assert.Contains(t, out, "  line one\n  line two")
	assert.Contains(t, out, "2501.00001-discussion.md (Transcript, 3 bytes)")
}
