package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/agentlens/agentlens/internal/interfaces"
	"github.com/agentlens/agentlens/internal/webclient"
)

// Fetcher retrieves a page and parses it into a Document.
type Fetcher struct {
	client webclient.WebClient
	logger interfaces.Logger
}

// New builds a Fetcher on top of an already-constructed WebClient.
func New(client webclient.WebClient, logger interfaces.Logger) (*Fetcher, error) {
	if client == nil {
		return nil, fmt.Errorf("fetcher: nil webclient")
	}
	if logger == nil {
		return nil, fmt.Errorf("fetcher: nil logger")
	}
	return &Fetcher{
		client: client,
		logger: logger.With(interfaces.Field{Key: "component", Value: "fetcher"}),
	}, nil
}

// Fetch retrieves rawURL and parses whatever HTML came back.
//
// Transport failures are returned as an error together with a best-effort
// (possibly empty) Document, so the caller can record a transport issue and
// continue the scan. Only an unusable URL returns a nil Document.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}

	start := time.Now()
	resp, err := f.client.Get(ctx, rawURL)
	elapsed := time.Since(start)

	doc := &Document{
		URL:       rawURL,
		FetchedAt: start,
		FetchedIn: elapsed,
	}

	if err != nil {
		f.logger.Warn("fetch failed",
			interfaces.Field{Key: "url", Value: rawURL},
			interfaces.Field{Key: "error", Value: err.Error()})
		return doc, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	doc.StatusCode = resp.StatusCode
	doc.Headers = resp.Headers
	doc.RawHTML = string(resp.Body)

	parsedDoc, perr := goquery.NewDocumentFromReader(strings.NewReader(doc.RawHTML))
	if perr != nil {
		// goquery's parser is extremely tolerant; a parse error here means the
		// body was not HTML at all. Keep the raw text and continue.
		f.logger.Warn("parse failed",
			interfaces.Field{Key: "url", Value: rawURL},
			interfaces.Field{Key: "error", Value: perr.Error()})
		return doc, fmt.Errorf("parse %s: %w", rawURL, perr)
	}
	doc.Doc = parsedDoc

	f.logger.Debug("fetched document",
		interfaces.Field{Key: "url", Value: rawURL},
		interfaces.Field{Key: "status", Value: resp.StatusCode},
		interfaces.Field{Key: "bytes", Value: len(resp.Body)},
		interfaces.Field{Key: "elapsed", Value: elapsed.String()})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return doc, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	return doc, nil
}

// Parse builds a Document directly from markup, bypassing the network. Used
// by tests and by hosts that already hold the page body.
func Parse(rawURL, html string) (*Document, error) {
	parsedDoc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{
		URL:        rawURL,
		RawHTML:    html,
		Doc:        parsedDoc,
		StatusCode: 200,
		FetchedAt:  time.Now(),
	}, nil
}
