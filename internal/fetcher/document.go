package fetcher

import (
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/agentlens/agentlens/internal/utils"
)

// mainContentSelectors is the preference order for the primary content
// region: explicit main container first, then an article, then the body.
var mainContentSelectors = []string{
	"main",
	"[role=main]",
	"#main-content",
	".main-content",
	"article",
	"body",
}

// Document is the parsed view of one fetched page. Everything downstream of
// the fetch reads from this value; nothing mutates it.
type Document struct {
	URL     string
	RawHTML string
	Doc     *goquery.Document

	StatusCode int
	Headers    http.Header
	FetchedAt  time.Time
	FetchedIn  time.Duration
}

// Title returns the trimmed <title> text.
func (d *Document) Title() string {
	if d.Doc == nil {
		return ""
	}
	return strings.TrimSpace(d.Doc.Find("title").First().Text())
}

// MainContent returns the selection for the primary content region: the
// first present of main-content container, article, full body.
func (d *Document) MainContent() *goquery.Selection {
	if d.Doc == nil {
		return nil
	}
	for _, sel := range mainContentSelectors {
		s := d.Doc.Find(sel).First()
		if s.Length() > 0 {
			return s
		}
	}
	return d.Doc.Selection
}

// MainContentSelector returns which selector MainContent resolved to, for
// labeling chunk containers.
func (d *Document) MainContentSelector() string {
	if d.Doc == nil {
		return ""
	}
	for _, sel := range mainContentSelectors {
		if d.Doc.Find(sel).First().Length() > 0 {
			return sel
		}
	}
	return ""
}

// Text returns the whitespace-normalized visible text of the main content,
// with script and style text removed.
func (d *Document) Text() string {
	sel := d.MainContent()
	if sel == nil {
		return ""
	}
	clone := sel.Clone()
	clone.Find("script, style, noscript").Remove()
	return utils.NormalizeWhitespace(clone.Text())
}

// Empty reports whether no markup was parsed (for example after a transport
// failure that yielded no body).
func (d *Document) Empty() bool {
	return d == nil || d.Doc == nil || strings.TrimSpace(d.RawHTML) == ""
}
