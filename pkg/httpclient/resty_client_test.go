package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientGetPassesThroughNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Trace"); got != "abc" {
			t.Errorf("expected X-Trace header, got %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "lookup-test" {
			t.Errorf("expected user agent, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"error":"nope"}`))
	}))
	defer srv.Close()

	client := NewRestyClientWithAgent(2*time.Second, "lookup-test")
	resp, err := client.Get(context.Background(), srv.URL, map[string]string{"X-Trace": "abc"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusTeapot {
		t.Fatalf("unexpected status %d", resp.StatusCode())
	}
	if string(resp.Body()) != `{"error":"nope"}` {
		t.Fatalf("unexpected body %q", resp.Body())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestRestyClientGetReturnsContextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRestyClient(time.Second).Get(ctx, srv.URL, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStaticResponseDefaults(t *testing.T) {
	resp := StaticResponse{Code: http.StatusNotFound}
	if resp.Status() != "404 Not Found" {
		t.Fatalf("unexpected status text %q", resp.Status())
	}
	if resp.Header() == nil {
		t.Fatalf("expected non-nil header map")
	}
}
