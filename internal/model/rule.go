package model

import (
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

// RuleMeta is the static declaration data attached to a rule.
type RuleMeta struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`

	// Priority orders execution (higher first). It only makes duplicate-issue
	// precedence and log ordering deterministic; it does not affect the final
	// result set.
	Priority int `json:"priority"`
}

// RuleContext is the read-only bundle every rule invocation receives. Rules
// own no state between invocations; each run is a pure function from this
// context to zero or more Issues.
type RuleContext struct {
	URL     string
	RawHTML string
	Doc     *goquery.Document
	Options *ScanOptions

	// Transport metadata is optional: a scan may continue with an empty
	// document after a fetch failure.
	StatusCode int
	Headers    http.Header
}
