package sinks

import (
	"context"
	"errors"
	"testing"
)

type stubSink struct {
	id     string
	typ    string
	err    error
	calls  int
	closed bool
}

func (s *stubSink) ID() string   { return s.id }
func (s *stubSink) Type() string { return s.typ }
func (s *stubSink) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}

type closingSink struct{ stubSink }

func (c *closingSink) Close() error {
	c.closed = true
	return nil
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	ok := &stubSink{id: "ok", typ: "http"}
	bad := &stubSink{id: "bad", typ: "http", err: errors.New("failed")}
	fanout := NewFanout([]Sink{ok, nil, bad})

	if fanout.Size() != 2 {
		t.Fatalf("expected nil sinks to be dropped, size=%d", fanout.Size())
	}

	count, err := fanout.Publish(context.Background(), Event{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if ok.calls != 1 || bad.calls != 1 {
		t.Fatalf("expected every sink to be called once")
	}
}

func TestFanoutCloseClosesClosers(t *testing.T) {
	c := &closingSink{stubSink{id: "c", typ: "pubsub"}}
	fanout := NewFanout([]Sink{c, &stubSink{id: "plain"}})

	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !c.closed {
		t.Fatalf("expected closer sink to be closed")
	}
}

func TestNilFanoutIsSafe(t *testing.T) {
	var f *Fanout
	if n, err := f.Publish(context.Background(), Event{}); n != 0 || err != nil {
		t.Fatalf("unexpected result n=%d err=%v", n, err)
	}
	if f.Size() != 0 || f.Close() != nil {
		t.Fatalf("nil fanout should be empty")
	}
}
