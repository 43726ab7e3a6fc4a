package webresolver

import (
	"context"
	"fmt"
)

// Request is a generic lookup, used by callers that pick the action at runtime.
type Request struct {
	Action Action
	Query  string
	// Port is only sent for portscan; nil omits the parameter.
	Port *int
	// Logger is only sent for iplogger.
	Logger string
}

// Do dispatches req to the method matching its action.
// A port on any action other than portscan is rejected with ErrPortNotSupported.
func (c *Client) Do(ctx context.Context, req Request) (Result, error) {
	if req.Port != nil && req.Action != ActionPortscan {
		return Result{}, fmt.Errorf("%w: %q", ErrPortNotSupported, req.Action)
	}
	switch req.Action {
	case ActionIPLogger:
		return c.IPLogger(ctx, req.Logger, req.Query)
	case ActionPortscan:
		if req.Port != nil {
			return c.Portscan(ctx, req.Query, *req.Port)
		}
		return c.Portscan(ctx, req.Query)
	}
	if !req.Action.Valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	return c.lookup(ctx, req.Action, req.Query)
}
