package webclient

import (
	"context"
	"net/http"
	"time"
)

// WebClient abstracts the transport used to fetch target pages. The scan core
// never touches net/http directly; it goes through this interface so tests
// can substitute a canned transport.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests.
	Get(ctx context.Context, url string) (*Response, error)

	Close() error
}

// Request describes one outbound HTTP request.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

// Response is the transport result handed to the fetcher.
type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}
