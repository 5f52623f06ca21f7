// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/journal-club/pkg/types"
)

var summarizeTmpl = template.Must(template.New("summarize").Parse(`Please read the paper {{.ID}} and tell me about it in detail. Explain what the paper is about, its main motivation, its main results and its main conclusions. Make clear what the new idea of the paper is and why it matters. Define any technical jargon you use.

Full text of the paper:
{{.FullText}}
`))

var critiqueTmpl = template.Must(template.New("critique").Parse(`Give your critical assessment of the following summary of a paper. Ask questions about it, and be skeptical. Not only scientific questions are welcome but also naive ones, such as "It is not clear to me what the authors mean by X" or "I do not see why the authors care about this topic".
Also give your own understanding of and opinion on the paper.

Summary of the paper:
{{.Summary}}
`))

var translateTmpl = template.Must(template.New("translate").Parse(`Translate the following summary of a paper, the questions about it, and the answers to those questions into Japanese. Do not worry about the length: translate all of the text below and never omit anything. Keep the three parts separate.

Summary of the paper:
{{.DetailedSummary}}

Questions and feedback:
{{.Criticize}}

Answers to the questions:
{{.Answer}}
`))

var selectTmpl = template.Must(template.New("select").Funcs(template.FuncMap{"join": strings.Join}).Parse(`From the following list of today's papers, choose the interesting ones. For each chosen paper give the reason in English (reason_en) and in Japanese (reason_ja), and copy its arXiv id, title, authors and primary category exactly as listed.
{{range .}}
arxiv_id: {{.ID}}
title: {{.Title}}
authors: {{join .Authors ", "}}
primary_category: {{.PrimaryCategory}}
abstract: {{.Abstract}}
{{end}}`))

// FeedbackPrefix starts the user turn that hands the critique to staff.
const FeedbackPrefix = "Feedback: "

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// SummarizePrompt asks the student to present the paper.
func SummarizePrompt(id, fullText string) (string, error) {
	return render(summarizeTmpl, struct{ ID, FullText string }{id, fullText})
}

// CritiquePrompt gives the postdoc the rendered summary and nothing else.
func CritiquePrompt(summary string) (string, error) {
	return render(critiqueTmpl, struct{ Summary string }{summary})
}

// FeedbackTurn is the user turn appended to the summarization history.
func FeedbackTurn(critique string) string {
	return FeedbackPrefix + critique
}

// TranslatePrompt embeds all three parts of d in one prompt.
func TranslatePrompt(d types.PaperDiscussion) (string, error) {
	return render(translateTmpl, d)
}

// SelectPrompt embeds the whole listing.
func SelectPrompt(papers []types.PaperRef) (string, error) {
	return render(selectTmpl, papers)
}
