package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage keeps a local history of lookup results.

// Record is the last known outcome of one lookup.
type Record struct {
	Action          string    `json:"action"`
	Query           string    `json:"query"`
	StatusCode      int       `json:"status_code"`
	Body            []byte    `json:"body,omitempty"`
	ValidationError string    `json:"validation_error,omitempty"`
	FetchedAt       time.Time `json:"fetched_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// Store persists lookup records keyed by lookup.
type Store interface {
	Close() error
	Get(key string) (Record, bool, error)
	Put(key string, rec Record) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	RecordTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultRecordTTL       = 24 * time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

// Key builds the store key of a lookup.
func Key(action, query string, extra ...string) string {
	parts := append([]string{action, query}, extra...)
	return strings.Join(parts, "\x1f")
}

func normalizeOptions(opts Options) Options {
	if opts.RecordTTL <= 0 {
		opts.RecordTTL = defaultRecordTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                     { return nil }
func (noopStore) Get(string) (Record, bool, error) { return Record{}, false, nil }
func (noopStore) Put(string, Record) error         { return nil }
