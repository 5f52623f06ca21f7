// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/journal-club/pkg/types"
)

func TestRespondAddsSystemTurnOnce(t *testing.T) {
	user := types.Turn{Role: types.TurnUser, Content: "summarize"}
	req := Request{Instructions: "you are a student", History: types.NewHistory(user)}

	resp := respond(req, "summary", Usage{})
	assert.Equal(t, []types.Turn{
		{Role: types.TurnSystem, Content: "you are a student"},
		user,
		{Role: types.TurnAssistant, Content: "summary"},
	}, resp.History.Turns())

	// A continued history keeps its original system turn.
	next := Request{
		Instructions: "you are staff",
		History:      resp.History.Append(types.Turn{Role: types.TurnUser, Content: "Feedback: weak"}),
	}
	resp2 := respond(next, "reply", Usage{})
	assert.Equal(t, 5, resp2.History.Len())
	assert.True(t, resp2.History.HasPrefix(resp.History))
	assert.Equal(t, "you are a student", resp2.History.Turns()[0].Content)

	// The request history is untouched.
	assert.Equal(t, 1, req.History.Len())
}

func TestConversationDropsSystemTurns(t *testing.T) {
	h := types.NewHistory(
		types.Turn{Role: types.TurnSystem, Content: "student"},
		types.Turn{Role: types.TurnUser, Content: "u"},
		types.Turn{Role: types.TurnAssistant, Content: "a"},
	)
	assert.Equal(t, []types.Turn{
		{Role: types.TurnUser, Content: "u"},
		{Role: types.TurnAssistant, Content: "a"},
	}, conversation(h))
	assert.Equal(t, 3, h.Len())
}
