package runner

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/samvad-hq/webresolver-client/internal/storage"
	"github.com/samvad-hq/webresolver-client/pkg/httpclient"
	"github.com/samvad-hq/webresolver-client/pkg/lookups"
	"github.com/samvad-hq/webresolver-client/pkg/sinks"
	"github.com/samvad-hq/webresolver-client/pkg/webresolver"
)

// fakeTransport answers every GET with 200 unless the URL contains failOn.
type fakeTransport struct {
	mu     sync.Mutex
	urls   []string
	failOn string
}

func (f *fakeTransport) Get(_ context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	if f.failOn != "" && strings.Contains(url, f.failOn) {
		return nil, errors.New("connection refused")
	}
	return httpclient.StaticResponse{Code: http.StatusOK, Payload: []byte(`{"ok":true}`)}, nil
}

// fakePublisher records published events and can inject errors.
type fakePublisher struct {
	mu      sync.Mutex
	events  []sinks.Event
	errOnID string
}

func (f *fakePublisher) Publish(_ context.Context, evt sinks.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if evt.LookupID == f.errOnID {
		return 0, errors.New("boom")
	}
	return 1, nil
}

// fakeHistory is an in-memory History.
type fakeHistory struct {
	mu      sync.Mutex
	records map[string]storage.Record
	getErr  error
}

func (f *fakeHistory) Get(key string) (storage.Record, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return storage.Record{}, false, f.getErr
	}
	rec, ok := f.records[key]
	return rec, ok, nil
}

func (f *fakeHistory) Put(key string, rec storage.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records == nil {
		f.records = make(map[string]storage.Record)
	}
	f.records[key] = rec
	return nil
}

func newClient(transport *fakeTransport) *webresolver.Client {
	return webresolver.New("key", webresolver.WithEndpoint("https://api.test/api.php"), webresolver.WithHTTPClient(transport))
}

func TestRunFetchesRecordsAndPublishes(t *testing.T) {
	transport := &fakeTransport{}
	pub := &fakePublisher{}
	history := &fakeHistory{}
	svc := NewService(newClient(transport), pub, nil, history)

	items := []lookups.Lookup{
		{ID: "dns", Action: "dns", Query: "example.com"},
		{ID: "bad-ip", Action: "ip2skype", Query: "not-an-ip"},
	}

	sum, err := svc.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Fetched != 1 || sum.Rejected != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if len(transport.urls) != 1 {
		t.Fatalf("expected only the valid lookup to reach the transport, got %v", transport.urls)
	}
	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}
	if pub.events[1].ValidationError != "please provide a valid ip address" {
		t.Fatalf("unexpected rejected event %+v", pub.events[1])
	}
	rec, ok := history.records[items[0].StoreKey()]
	if !ok || rec.StatusCode != http.StatusOK || string(rec.Body) != `{"ok":true}` {
		t.Fatalf("expected dns result recorded, got %+v ok=%v", rec, ok)
	}
}

func TestRunSkipsFreshLookups(t *testing.T) {
	transport := &fakeTransport{}
	item := lookups.Lookup{ID: "whois", Action: "whois", Query: "example.com"}
	history := &fakeHistory{records: map[string]storage.Record{item.StoreKey(): {Action: "whois"}}}
	pub := &fakePublisher{}
	svc := NewService(newClient(transport), pub, nil, history)

	sum, err := svc.Run(context.Background(), []lookups.Lookup{item})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Skipped != 1 || len(transport.urls) != 0 || len(pub.events) != 0 {
		t.Fatalf("expected lookup skipped, sum=%+v urls=%v events=%d", sum, transport.urls, len(pub.events))
	}
}

func TestRunContinuesWhenHistoryFails(t *testing.T) {
	transport := &fakeTransport{}
	svc := NewService(newClient(transport), nil, nil, &fakeHistory{getErr: errors.New("disk gone")})

	sum, err := svc.Run(context.Background(), []lookups.Lookup{{ID: "geo", Action: "geoip", Query: "example.com"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Fetched != 1 {
		t.Fatalf("expected lookup fetched despite history error, got %+v", sum)
	}
}

func TestRunAggregatesTransportAndPublishErrors(t *testing.T) {
	transport := &fakeTransport{failOn: "action=ping"}
	pub := &fakePublisher{errOnID: "dns"}
	svc := NewService(newClient(transport), pub, nil, nil)

	sum, err := svc.Run(context.Background(), []lookups.Lookup{
		{ID: "ping", Action: "ping", Query: "example.com"},
		{ID: "dns", Action: "dns", Query: "example.com"},
		{ID: "geo", Action: "geoip", Query: "example.com"},
	})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if !strings.Contains(err.Error(), "lookup ping") || !strings.Contains(err.Error(), "publish lookup dns") {
		t.Fatalf("unexpected error %v", err)
	}
	if sum.Failed != 1 || sum.Fetched != 2 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if pub.events[0].Error == "" {
		t.Fatalf("expected transport error published, got %+v", pub.events[0])
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport := &fakeTransport{}
	svc := NewService(newClient(transport), nil, nil, nil)
	sum, errs := svc.runAll(ctx, []lookups.Lookup{{ID: "dns", Action: "dns", Query: "example.com"}})
	if len(errs) != 0 || sum != (Summary{}) || len(transport.urls) != 0 {
		t.Fatalf("expected no work on cancelled context, sum=%+v errs=%v", sum, errs)
	}
}

func TestRunRejectsEmptyLookups(t *testing.T) {
	svc := NewService(newClient(&fakeTransport{}), nil, nil, nil)
	if _, err := svc.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error when lookups list empty")
	}
}
