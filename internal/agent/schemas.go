// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"github.com/pdiddy/journal-club/internal/llm"
	"github.com/pdiddy/journal-club/pkg/types"
)

// DiscussionSchema is the three-field shape of a PaperDiscussion.
var DiscussionSchema = &llm.Schema{
	Name:        "paper_discussion",
	Description: "A journal club discussion: detailed summary, critique, and the answer to the critique.",
	Definition: llm.Object(map[string]any{
		"detailed_summary": llm.String("The detailed summary of the paper."),
		"criticize":        llm.String("The questions and criticism about the summary."),
		"answer":           llm.String("The answers to the questions and criticism."),
	}),
}

// CandidatesSchema is the selector's reply: an object wrapping the list of
// interesting papers, since strict structured output requires an object root.
var CandidatesSchema = &llm.Schema{
	Name:        "interesting_papers",
	Description: "The papers chosen for today's journal club.",
	Definition: llm.Object(map[string]any{
		"papers": llm.Array(llm.Object(map[string]any{
			"arxiv_id":         llm.String("The arXiv identifier, e.g. 2501.00001."),
			"title":            llm.String("The paper title as listed."),
			"authors":          llm.Array(map[string]any{"type": "string"}, "The authors in listed order."),
			"reason_en":        llm.String("Why the paper is interesting, in English."),
			"reason_ja":        llm.String("Why the paper is interesting, in Japanese."),
			"primary_category": llm.String("The primary arXiv category."),
		}), "The chosen papers, most interesting first."),
	}),
}

// Candidates is the decoding target of CandidatesSchema.
type Candidates struct {
	Papers []types.InterestingPaper `json:"papers" validate:"dive"`
}
