package lookups

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/webresolver-client/internal/storage"
	"github.com/samvad-hq/webresolver-client/pkg/webresolver"
)

// Package lookups loads batch lookup definitions from YAML/JSON files.

// Lookup is one configured request executed by the runner.
type Lookup struct {
	ID      string `json:"id" yaml:"id"`
	Action  string `json:"action" yaml:"action"`
	Query   string `json:"query" yaml:"query"`
	Port    *int   `json:"port,omitempty" yaml:"port,omitempty"`
	Logger  string `json:"logger,omitempty" yaml:"logger,omitempty"`
	Enabled *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

type file struct {
	Lookups []Lookup `json:"lookups" yaml:"lookups"`
}

// Registry holds the lookups declared in a file.
type Registry struct {
	mu      sync.RWMutex
	lookups []Lookup
	idx     map[string]Lookup
}

// LoadRegistry loads lookups from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("lookups file path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lookups file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read lookups file: %w", err)
	}

	parsed, err := parseFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewRegistry(parsed.Lookups)
}

// NewRegistry sanitizes and validates lookups and indexes them by id.
func NewRegistry(entries []Lookup) (*Registry, error) {
	if len(entries) == 0 {
		return nil, errors.New("lookups file contains no lookups entries")
	}

	reg := &Registry{
		lookups: make([]Lookup, len(entries)),
		idx:     make(map[string]Lookup, len(entries)),
	}
	for i := range entries {
		l := sanitizeLookup(entries[i])
		if err := validateLookup(l); err != nil {
			return nil, fmt.Errorf("lookups[%d]: %w", i, err)
		}
		if _, exists := reg.idx[l.ID]; exists {
			return nil, fmt.Errorf("duplicate lookup id %q", l.ID)
		}
		reg.lookups[i] = l
		reg.idx[l.ID] = l
	}
	return reg, nil
}

func parseFile(data []byte, ext string) (file, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out file
		if err := d.fn(data, &out); err == nil {
			return out, nil
		}
	}

	return file{}, errors.New("lookups file format not recognized (expected YAML or JSON)")
}

// sanitizeLookup trims fields and normalizes the action to its code.
// The query is kept verbatim: blank queries are the client's to reject.
func sanitizeLookup(l Lookup) Lookup {
	l.ID = strings.TrimSpace(l.ID)
	l.Logger = strings.TrimSpace(l.Logger)
	if a, err := webresolver.ParseAction(l.Action); err == nil {
		l.Action = string(a)
	} else {
		l.Action = strings.TrimSpace(l.Action)
	}
	if l.Enabled == nil {
		def := true
		l.Enabled = &def
	}
	return l
}

func validateLookup(l Lookup) error {
	if l.ID == "" {
		return errors.New("id is required")
	}
	if l.Action == "" {
		return fmt.Errorf("action is required for lookup %q", l.ID)
	}
	if !webresolver.Action(l.Action).Valid() {
		return fmt.Errorf("unknown action %q for lookup %q", l.Action, l.ID)
	}
	if l.Port != nil && (*l.Port <= 0 || *l.Port > 65535) {
		return fmt.Errorf("port %d out of range for lookup %q", *l.Port, l.ID)
	}
	if l.Port != nil && l.Action != string(webresolver.ActionPortscan) {
		return fmt.Errorf("port is only supported by portscan (lookup %q)", l.ID)
	}
	return nil
}

// ByID returns the lookup with the given id.
func (r *Registry) ByID(id string) (Lookup, bool) {
	if r == nil {
		return Lookup{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Lookup{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.idx[id]
	return l, ok
}

// All returns every configured lookup in file order.
func (r *Registry) All() []Lookup {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Lookup, len(r.lookups))
	copy(out, r.lookups)
	return out
}

// Enabled returns lookups that are enabled.
func (r *Registry) Enabled() []Lookup {
	all := r.All()
	out := make([]Lookup, 0, len(all))
	for _, l := range all {
		if l.EnabledValue() {
			out = append(out, l)
		}
	}
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (l Lookup) EnabledValue() bool {
	if l.Enabled == nil {
		return true
	}
	return *l.Enabled
}

// Request converts the lookup into a client request.
func (l Lookup) Request() webresolver.Request {
	return webresolver.Request{
		Action: webresolver.Action(l.Action),
		Query:  l.Query,
		Port:   l.Port,
		Logger: l.Logger,
	}
}

// StoreKey identifies the lookup in the history store.
func (l Lookup) StoreKey() string {
	extra := []string{l.Logger}
	if l.Port != nil {
		extra = append(extra, strconv.Itoa(*l.Port))
	}
	return storage.Key(l.Action, l.Query, extra...)
}
