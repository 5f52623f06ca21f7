// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/journal-club/pkg/types"
)

// maxListedAuthors is the author count from which only the first author is
// shown, followed by "et al.".
const maxListedAuthors = 4

// LanguageNotice is the first reply of every thread.
const LanguageNotice = "日本語訳の後に英語の原文が続きます。\nThe Japanese translation comes first, followed by the original English."

// FormatAuthors lists all authors when there are fewer than four, otherwise
// the first author and "et al.".
func FormatAuthors(authors []string) string {
	switch {
	case len(authors) == 0:
		return "Unknown"
	case len(authors) < maxListedAuthors:
		return strings.Join(authors, ", ")
	default:
		return authors[0] + " et al."
	}
}

// Header is the top-level message of a paper's thread.
func Header(p types.InterestingPaper) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", p.Title)
	fmt.Fprintf(&b, "%s | %s\n", p.PrimaryCategory, FormatAuthors(p.Authors))
	fmt.Fprintf(&b, "%s\n", p.URL())
	fmt.Fprintf(&b, "%s\n", p.ReasonEN)
	b.WriteString(p.ReasonJA)
	return b.String()
}

// Segments are the thread replies in posting order: the language notice,
// the translated summary, critique and answer, then the originals.
func Segments(d types.BilingualDiscussion) []string {
	return []string{
		LanguageNotice,
		"*要約*\n" + d.Translated.DetailedSummary,
		"*質問とフィードバック*\n" + d.Translated.Criticize,
		"*回答*\n" + d.Translated.Answer,
		"*Summary*\n" + d.Original.DetailedSummary,
		"*Questions and feedback*\n" + d.Original.Criticize,
		"*Answers*\n" + d.Original.Answer,
	}
}

// Notice is posted in place of a paper's thread when it failed.
func Notice(id, message string) string {
	return fmt.Sprintf("Error processing %s: %s", id, message)
}

// BatchHeader opens a run.
func BatchHeader(category string, day time.Time, candidates int) string {
	return fmt.Sprintf("*Journal club %s* (%s): %d papers selected today. / 本日の論文: %d 本",
		day.Format("2006-01-02"), category, candidates, candidates)
}

// TranscriptFilename names the Markdown transcript of a paper.
func TranscriptFilename(id string) string {
	return strings.ReplaceAll(id, "/", "_") + "-discussion.md"
}

// Transcript renders both languages as one Markdown document.
func Transcript(p types.InterestingPaper, d types.BilingualDiscussion) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	fmt.Fprintf(&b, "- arXiv: [%s](%s)\n", p.ID, p.URL())
	fmt.Fprintf(&b, "- Category: %s\n", p.PrimaryCategory)
	fmt.Fprintf(&b, "- Authors: %s\n\n", strings.Join(p.Authors, ", "))
	fmt.Fprintf(&b, "> %s\n>\n> %s\n\n", p.ReasonEN, p.ReasonJA)

	section := func(title string, pd types.PaperDiscussion, s, c, a string) {
		fmt.Fprintf(&b, "## %s\n\n### %s\n\n%s\n\n### %s\n\n%s\n\n### %s\n\n%s\n\n",
			title, s, pd.DetailedSummary, c, pd.Criticize, a, pd.Answer)
	}
	section("日本語", d.Translated, "要約", "質問とフィードバック", "回答")
	section("English", d.Original, "Summary", "Questions and feedback", "Answers")
	return []byte(b.String())
}
