// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TurnRole is the speaker of one conversation turn.
type TurnRole string

const (
	TurnSystem    TurnRole = "system"
	TurnUser      TurnRole = "user"
	TurnAssistant TurnRole = "assistant"
)

// Turn is one message exchanged with a model.
type Turn struct {
	Role    TurnRole `json:"role" yaml:"role"`
	Content string   `json:"content" yaml:"content"`
}

// History is an ordered conversation. A History value is never modified
// after it is created: Append returns a new History and leaves the receiver
// untouched, so two stages holding the same History cannot observe each
// other's turns.
type History struct {
	turns []Turn
}

// NewHistory returns a History holding a copy of turns.
func NewHistory(turns ...Turn) History {
	return History{turns: append([]Turn(nil), turns...)}
}

// Append returns a new History with turns added after the receiver's turns.
func (h History) Append(turns ...Turn) History {
	out := make([]Turn, 0, len(h.turns)+len(turns))
	out = append(out, h.turns...)
	out = append(out, turns...)
	return History{turns: out}
}

// Turns returns a copy of the turns in order.
func (h History) Turns() []Turn {
	return append([]Turn(nil), h.turns...)
}

// Len returns the number of turns.
func (h History) Len() int { return len(h.turns) }

// Last returns the final turn and false when the history is empty.
func (h History) Last() (Turn, bool) {
	if len(h.turns) == 0 {
		return Turn{}, false
	}
	return h.turns[len(h.turns)-1], true
}

// HasPrefix reports whether prefix is a leading subsequence of h.
func (h History) HasPrefix(prefix History) bool {
	if len(prefix.turns) > len(h.turns) {
		return false
	}
	for i, t := range prefix.turns {
		if h.turns[i] != t {
			return false
		}
	}
	return true
}

// Contains reports whether any turn of h equals t.
func (h History) Contains(t Turn) bool {
	for _, turn := range h.turns {
		if turn == t {
			return true
		}
	}
	return false
}

// PaperDiscussion is the three-part journal club record for one paper.
type PaperDiscussion struct {
	DetailedSummary string `json:"detailed_summary" yaml:"detailed_summary" validate:"required"`
	Criticize       string `json:"criticize" yaml:"criticize" validate:"required"`
	Answer          string `json:"answer" yaml:"answer" validate:"required"`
}

// BilingualDiscussion pairs the original discussion with its translation.
// Translated is either fully populated or the translation failed.
type BilingualDiscussion struct {
	Original   PaperDiscussion `json:"original" yaml:"original"`
	Translated PaperDiscussion `json:"translated" yaml:"translated"`
}

// ErrorRecord describes why one candidate could not be discussed.
type ErrorRecord struct {
	PaperID string `json:"paper_id" yaml:"paper_id"`
	Stage   string `json:"stage,omitempty" yaml:"stage,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// RunResult is the outcome for one candidate. Err is set when the candidate
// failed. Discussion is set when the discussion completed, which includes a
// discussion that could not be posted.
type RunResult struct {
	Paper      InterestingPaper     `json:"paper" yaml:"paper"`
	Discussion *BilingualDiscussion `json:"discussion,omitempty" yaml:"discussion,omitempty"`
	Err        *ErrorRecord         `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the candidate produced an error instead of a
// discussion.
func (r RunResult) Failed() bool { return r.Err != nil }
