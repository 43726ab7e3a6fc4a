package httpclient

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout applies when a non-positive timeout is requested.
const DefaultTimeout = 15 * time.Second

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout, "")}
}

// NewRestyClientWithAgent is NewRestyClient with a fixed User-Agent on every request.
func NewRestyClientWithAgent(timeout time.Duration, userAgent string) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout, userAgent)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout, "")
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration, userAgent string) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New()
	c.SetTimeout(timeout)
	if ua := strings.TrimSpace(userAgent); ua != "" {
		c.SetHeader("User-Agent", ua)
	}
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
// Non-2xx responses are returned without error; only transport failures are errors.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Status() string      { return r.resp.Status() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }

// StaticResponse is an in-memory Response, useful for fakes and replaying stored results.
type StaticResponse struct {
	Code    int
	Text    string
	Headers http.Header
	Payload []byte
}

func (s StaticResponse) Body() []byte    { return s.Payload }
func (s StaticResponse) StatusCode() int { return s.Code }

func (s StaticResponse) Status() string {
	if s.Text != "" {
		return s.Text
	}
	if t := http.StatusText(s.Code); t != "" {
		return strconv.Itoa(s.Code) + " " + t
	}
	return strconv.Itoa(s.Code)
}

func (s StaticResponse) Header() http.Header {
	if s.Headers == nil {
		return http.Header{}
	}
	return s.Headers
}
