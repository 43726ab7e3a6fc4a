package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract. Lookup responses are passed
// to callers as-is, so it carries the status line and headers too.
type Response interface {
	Body() []byte
	StatusCode() int
	Status() string
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
