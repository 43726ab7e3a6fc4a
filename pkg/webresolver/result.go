package webresolver

import (
	"errors"
	"fmt"

	"github.com/samvad-hq/webresolver-client/pkg/httpclient"
)

// ErrUnknownAction is returned by Do and ParseAction for unsupported action codes.
var ErrUnknownAction = errors.New("unknown webresolver action")

// ErrPortNotSupported is returned by Do when a port is set on an action other than portscan.
var ErrPortNotSupported = errors.New("port is only supported by portscan")

// Result is the outcome of a lookup: either the untouched transport response
// or a validation failure produced locally without any network call.
type Result struct {
	Action          Action
	Response        httpclient.Response
	ValidationError *ValidationError
}

// ValidationError describes a primary input rejected before the request was built.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Payload mirrors the `{ data: { error } }` shape callers branch on.
type Payload struct {
	Data PayloadData `json:"data"`
}

// PayloadData carries the error message of a synthesized response.
type PayloadData struct {
	Error string `json:"error,omitempty"`
}

// Invalid reports whether the lookup was rejected locally.
func (r Result) Invalid() bool { return r.ValidationError != nil }

// Data returns the synthesized payload; Error is empty for remote responses.
func (r Result) Data() Payload {
	if r.ValidationError == nil {
		return Payload{}
	}
	return Payload{Data: PayloadData{Error: r.ValidationError.Message}}
}

// StatusCode is the remote status, or 0 when nothing was sent.
func (r Result) StatusCode() int {
	if r.Response == nil {
		return 0
	}
	return r.Response.StatusCode()
}

// Body is the remote body, or nil when nothing was sent.
func (r Result) Body() []byte {
	if r.Response == nil {
		return nil
	}
	return r.Response.Body()
}

func invalid(action Action, f field, msg string) Result {
	return Result{
		Action:          action,
		ValidationError: &ValidationError{Field: f.name, Message: msg},
	}
}
