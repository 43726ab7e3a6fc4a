// Package webresolver is a thin client for the webresolver.nl lookup API.
//
// Every lookup follows the same path: check the primary input locally, build
// `<endpoint>?key=<key>&json&action=<code>&string=<value>` and issue one GET.
// Rejected input never reaches the network; it comes back as a Result with
// ValidationError set. Transport failures are returned as errors untouched.
package webresolver

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/samvad-hq/webresolver-client/pkg/httpclient"
)

// DefaultEndpoint is the public API endpoint.
const DefaultEndpoint = "https://webresolver.nl/api.php"

// Logger is the logging surface the client relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}

// Client issues lookups against a single endpoint with a fixed API key.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	endpoint string
	baseURL  string
	escape   bool
	http     httpclient.Client
	log      Logger
	validate *validator.Validate
}

// Option customizes a Client at construction.
type Option func(*Client)

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if e := strings.TrimSpace(endpoint); e != "" {
			c.endpoint = e
		}
	}
}

// WithHTTPClient replaces the default resty transport.
func WithHTTPClient(client httpclient.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger routes construction warnings and request traces to log.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithEscapedQuery query-escapes the key and every parameter value.
// The default sends values verbatim, as the remote API has always received them.
func WithEscapedQuery(escape bool) Option {
	return func(c *Client) { c.escape = escape }
}

// New builds a client for apiKey. A blank key is accepted with a warning;
// the remote service decides how to answer requests carrying it.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		log:      noopLogger{},
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(httpclient.DefaultTimeout)
	}

	if strings.TrimSpace(apiKey) == "" {
		c.log.WarnObj("webresolver api key is empty", "webresolver_client", map[string]any{
			"endpoint": c.endpoint,
		})
	}

	sep := "?"
	if strings.Contains(c.endpoint, "?") {
		sep = "&"
	}
	c.baseURL = c.endpoint + sep + "key=" + c.value(apiKey)
	return c
}

// SkypeResolve resolves a Skype username to its last known IP address.
func (c *Client) SkypeResolve(ctx context.Context, username string) (Result, error) {
	return c.lookup(ctx, ActionResolve, username)
}

// ResolveDB looks a Skype username up in the resolver database.
func (c *Client) ResolveDB(ctx context.Context, username string) (Result, error) {
	return c.lookup(ctx, ActionResolveDB, username)
}

// IP2Skype finds Skype usernames seen on ip.
func (c *Client) IP2Skype(ctx context.Context, ip string) (Result, error) {
	return c.lookup(ctx, ActionIP2Skype, ip)
}

// Email2Skype finds Skype usernames registered with email.
func (c *Client) Email2Skype(ctx context.Context, email string) (Result, error) {
	return c.lookup(ctx, ActionEmail2Skype, email)
}

// Skype2Email finds email addresses linked to a Skype username.
func (c *Client) Skype2Email(ctx context.Context, username string) (Result, error) {
	return c.lookup(ctx, ActionSkype2Email, username)
}

// GeoIP geolocates a domain or address.
func (c *Client) GeoIP(ctx context.Context, domain string) (Result, error) {
	return c.lookup(ctx, ActionGeoIP, domain)
}

// DNS returns the DNS records of domain.
func (c *Client) DNS(ctx context.Context, domain string) (Result, error) {
	return c.lookup(ctx, ActionDNS, domain)
}

// Cloudflare attempts to find the origin behind a Cloudflare-fronted domain.
func (c *Client) Cloudflare(ctx context.Context, domain string) (Result, error) {
	return c.lookup(ctx, ActionCloudflare, domain)
}

// Phone checks a phone number.
func (c *Client) Phone(ctx context.Context, phoneNumber string) (Result, error) {
	return c.lookup(ctx, ActionPhone, phoneNumber)
}

// Screenshot requests a screenshot of target.
func (c *Client) Screenshot(ctx context.Context, target string) (Result, error) {
	return c.lookup(ctx, ActionScreenshot, target)
}

// Headers returns the HTTP response headers of domain as plain text.
func (c *Client) Headers(ctx context.Context, domain string) (Result, error) {
	return c.lookup(ctx, ActionHeaders, domain)
}

// Whois returns the WHOIS record of target as plain text.
func (c *Client) Whois(ctx context.Context, target string) (Result, error) {
	return c.lookup(ctx, ActionWhois, target)
}

// Ping pings target and returns the output as plain text.
func (c *Client) Ping(ctx context.Context, target string) (Result, error) {
	return c.lookup(ctx, ActionPing, target)
}

// Portscan scans target. Without a port the remote default set is scanned.
// Only the first port is used.
func (c *Client) Portscan(ctx context.Context, target string, port ...int) (Result, error) {
	if len(port) == 0 {
		return c.lookup(ctx, ActionPortscan, target)
	}
	return c.lookup(ctx, ActionPortscan, target, param{"port", strconv.Itoa(port[0])})
}

// IPLogger fetches the hits recorded by an IP logger. It performs no input
// checks: empty logger and id are sent as empty parameters.
func (c *Client) IPLogger(ctx context.Context, logger, id string) (Result, error) {
	return c.send(ctx, actionIdx[ActionIPLogger], param{"string", id}, param{"logger", logger})
}

// IsTempEmail checks whether email belongs to a disposable mail provider.
func (c *Client) IsTempEmail(ctx context.Context, email string) (Result, error) {
	return c.lookup(ctx, ActionDisposableEmail, email)
}

// IP2Websites lists websites hosted on ip.
func (c *Client) IP2Websites(ctx context.Context, ip string) (Result, error) {
	return c.lookup(ctx, ActionIP2Websites, ip)
}

// DomainInfo returns registration and hosting details of domain.
func (c *Client) DomainInfo(ctx context.Context, domain string) (Result, error) {
	return c.lookup(ctx, ActionDomainInfo, domain)
}

type param struct {
	name  string
	value string
}

func (c *Client) lookup(ctx context.Context, action Action, primary string, extra ...param) (Result, error) {
	spec, ok := actionIdx[action]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if res, rejected := c.check(spec, primary); rejected {
		c.log.DebugObj("webresolver lookup rejected", "webresolver_validation", map[string]any{
			"action": string(action),
			"field":  spec.input.name,
			"error":  res.ValidationError.Message,
		})
		return res, nil
	}
	params := append([]param{{"string", primary}}, extra...)
	return c.send(ctx, spec, params...)
}

func (c *Client) check(spec actionSpec, primary string) (Result, bool) {
	in := spec.input
	if strings.TrimSpace(primary) == "" {
		return invalid(spec.action, in, in.prompt), true
	}
	if in.tag != "" && c.validate.Var(primary, in.tag) != nil {
		return invalid(spec.action, in, in.tagPrompt), true
	}
	return Result{}, false
}

func (c *Client) send(ctx context.Context, spec actionSpec, params ...param) (Result, error) {
	target := c.buildURL(spec, params)
	c.log.DebugObj("webresolver request", "webresolver_request", map[string]any{
		"action": string(spec.action),
		"params": len(params),
	})

	resp, err := c.http.Get(ctx, target, nil)
	if err != nil {
		return Result{Action: spec.action}, fmt.Errorf("webresolver %s: %w", spec.action, err)
	}
	return Result{Action: spec.action, Response: resp}, nil
}

func (c *Client) buildURL(spec actionSpec, params []param) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString("&")
	b.WriteString(spec.format)
	b.WriteString("&action=")
	b.WriteString(string(spec.action))
	for _, p := range params {
		b.WriteString("&")
		b.WriteString(p.name)
		b.WriteString("=")
		b.WriteString(c.value(p.value))
	}
	return b.String()
}

func (c *Client) value(v string) string {
	if c.escape {
		return url.QueryEscape(v)
	}
	return v
}
