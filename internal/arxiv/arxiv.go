// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv is the paper repository: it lists the papers of a category
// in the latest announced mailing and produces a paper's full text through
// the arXiv API.
//
// The API has no notion of a mailing, so the listing is the newest
// submissions of the category filtered to the submission window of the last
// announcement (14:00 US Eastern cutoffs, Friday's batch announced on
// Sunday). Announcement holidays are not known to the client; on such a day
// the window is still computed from the regular schedule.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/journal-club/internal/convert"
	"github.com/pdiddy/journal-club/internal/failure"
	"github.com/pdiddy/journal-club/internal/httputil"
	"github.com/pdiddy/journal-club/pkg/types"
)

// Endpoints. Declared as vars so tests can substitute an httptest server.
var (
	apiBase = "https://export.arxiv.org/api/query"
	pdfBase = "https://arxiv.org/pdf/"
)

const defaultMaxResults = 200

// idPattern matches new-style ("2501.00001", "2501.00001v2") and old-style
// ("hep-th/9901001") identifiers, optionally prefixed with "arXiv:".
var idPattern = regexp.MustCompile(`^(?i:arxiv:)?((?:\d{4}\.\d{4,5})|(?:[a-z\-]+(?:\.[A-Z]{2})?/\d{7}))(v\d+)?$`)

// NormalizeID strips the "arXiv:" prefix and version suffix from id.
func NormalizeID(id string) (string, error) {
	m := idPattern.FindStringSubmatch(strings.TrimSpace(id))
	if m == nil {
		return "", fmt.Errorf("invalid arXiv identifier %q", id)
	}
	return m[1], nil
}

// Client talks to the arXiv API.
type Client struct {
	http      *http.Client
	cfg       types.RepositoryConfig
	converter convert.Converter
	log       zerolog.Logger
	now       func() time.Time
}

// New returns a Client. conv may be nil when cfg.FullText is "abstract".
func New(cfg types.RepositoryConfig, conv convert.Converter, log zerolog.Logger) (*Client, error) {
	if cfg.FullText != types.FullTextAbstract && conv == nil {
		return nil, fmt.Errorf("arxiv: full-text backend %q needs a converter", cfg.FullText)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		cfg:       cfg,
		converter: conv,
		log:       log.With().Str("component", "arxiv").Logger(),
		now:       time.Now,
	}, nil
}

// ListToday returns the papers of category in the latest announced mailing,
// newest first. Papers submitted after that mailing's cutoff are left for the
// next one.
func (c *Client) ListToday(ctx context.Context, category string) ([]types.PaperRef, error) {
	maxResults := c.cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	q := url.Values{}
	q.Set("search_query", "cat:"+category)
	q.Set("sortBy", "submittedDate")
	q.Set("sortOrder", "descending")
	q.Set("start", "0")
	q.Set("max_results", strconv.Itoa(maxResults))

	feed, err := c.query(ctx, q)
	if err != nil {
		return nil, &failure.FetchError{Op: "listing " + category, Err: err}
	}

	var papers []types.PaperRef
	for _, e := range feed.Entries {
		if e.isError() {
			return nil, &failure.FetchError{Op: "listing " + category, Err: fmt.Errorf("arXiv API error: %s", clean(e.Summary))}
		}
		if p, ok := e.paper(); ok {
			papers = append(papers, p)
		}
	}
	m := latestMailing(c.now())
	announced := papers[:0:0]
	for _, p := range papers {
		if m.contains(p.Submitted) {
			announced = append(announced, p)
		}
	}

	c.log.Info().
		Str("category", category).
		Time("window_from", m.from).
		Time("window_to", m.to).
		Int("entries", len(feed.Entries)).
		Int("papers", len(announced)).
		Msg("listed submissions")
	return announced, nil
}

// Lookup returns the metadata of one paper.
func (c *Client) Lookup(ctx context.Context, id string) (types.PaperRef, error) {
	norm, err := NormalizeID(id)
	if err != nil {
		return types.PaperRef{}, &failure.NotFoundError{ID: id}
	}

	q := url.Values{}
	q.Set("id_list", norm)
	feed, err := c.query(ctx, q)
	if err != nil {
		return types.PaperRef{}, &failure.FetchError{Op: "metadata " + norm, Err: err}
	}
	for _, e := range feed.Entries {
		if e.isError() {
			continue
		}
		if p, ok := e.paper(); ok {
			return p, nil
		}
	}
	return types.PaperRef{}, &failure.NotFoundError{ID: norm}
}

// FetchFullText returns the text of paper id using the configured backend,
// truncated to MaxFullTextChars.
func (c *Client) FetchFullText(ctx context.Context, id string) (string, error) {
	paper, err := c.Lookup(ctx, id)
	if err != nil {
		return "", err
	}

	var text string
	if c.cfg.FullText == types.FullTextAbstract {
		text = abstractText(paper)
	} else {
		text, err = c.download(ctx, paper.ID)
		if err != nil {
			return "", err
		}
	}

	c.log.Debug().Str("paper_id", paper.ID).Int("chars", len(text)).Msg("fetched full text")
	return convert.Truncate(text, c.cfg.MaxFullTextChars), nil
}

func abstractText(p types.PaperRef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", p.Title)
	fmt.Fprintf(&b, "Authors: %s\n\n", strings.Join(p.Authors, ", "))
	fmt.Fprintf(&b, "Abstract:\n%s\n", p.Abstract)
	return b.String()
}

// download fetches the PDF to a temporary file and converts it.
func (c *Client) download(ctx context.Context, id string) (string, error) {
	pdfURL := pdfBase + id
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return "", &failure.FetchError{Op: "pdf " + id, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", &failure.NotFoundError{ID: id}
	case resp.StatusCode != http.StatusOK:
		return "", &failure.FetchError{Op: "pdf " + id, Err: fmt.Errorf("HTTP %d from %s", resp.StatusCode, pdfURL)}
	}

	tmp, err := os.CreateTemp("", "journal-club-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil {
		return "", &failure.FetchError{Op: "pdf " + id, Err: fmt.Errorf("writing download: %w", copyErr)}
	}
	if closeErr != nil {
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	text, err := c.converter.Convert(ctx, tmpPath)
	if err != nil {
		return "", &failure.FetchError{Op: "convert " + id, Err: err}
	}
	return text, nil
}

func (c *Client) query(ctx context.Context, q url.Values) (*feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var f feed
	if err := xml.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return &f, nil
}

// arXiv Atom feed XML structures.
type feed struct {
	Entries []entry `xml:"entry"`
}

type entry struct {
	ID              string   `xml:"id"`
	Title           string   `xml:"title"`
	Summary         string   `xml:"summary"`
	Published       string   `xml:"published"`
	Authors         []author `xml:"author"`
	PrimaryCategory struct {
		Term string `xml:"term,attr"`
	} `xml:"http://arxiv.org/schemas/atom primary_category"`
}

type author struct {
	Name string `xml:"name"`
}

// isError reports whether the entry is the API's error report.
func (e entry) isError() bool {
	return strings.Contains(e.ID, "/api/errors")
}

func (e entry) paper() (types.PaperRef, bool) {
	id := extractID(e.ID)
	if id == "" {
		return types.PaperRef{}, false
	}
	p := types.PaperRef{
		ID:              id,
		Title:           clean(e.Title),
		Abstract:        clean(e.Summary),
		PrimaryCategory: e.PrimaryCategory.Term,
	}
	for _, a := range e.Authors {
		p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
	}
	if t, err := time.Parse(time.RFC3339, e.Published); err == nil {
		p.Submitted = t
	}
	return p, true
}

// extractID pulls the identifier from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id, err := NormalizeID(idURL[idx+len(prefix):])
	if err != nil {
		return ""
	}
	return id
}

// clean collapses the line wrapping arXiv applies to titles and abstracts.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
