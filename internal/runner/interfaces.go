package runner

import (
	"context"

	"github.com/samvad-hq/webresolver-client/internal/storage"
	"github.com/samvad-hq/webresolver-client/pkg/sinks"
	"github.com/samvad-hq/webresolver-client/pkg/webresolver"
)

// LookupClient performs a single lookup.
type LookupClient interface {
	Do(ctx context.Context, req webresolver.Request) (webresolver.Result, error)
}

// EventPublisher publishes lookup results downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt sinks.Event) (int, error)
}

// History remembers recent lookup results so they are not repeated within the TTL.
type History interface {
	Get(key string) (storage.Record, bool, error)
	Put(key string, rec storage.Record) error
}
