package sinks

import (
	"time"

	"github.com/samvad-hq/webresolver-client/pkg/webresolver"
)

// Event represents a lookup result published downstream.
type Event struct {
	LookupID        string    `json:"lookup_id"`
	Action          string    `json:"action"`
	Query           string    `json:"query"`
	StatusCode      int       `json:"status_code,omitempty"`
	Body            string    `json:"body,omitempty"`
	ValidationError string    `json:"validation_error,omitempty"`
	Error           string    `json:"error,omitempty"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// NewEvent builds an Event from a client result. err is the transport error, if any.
func NewEvent(lookupID, query string, res webresolver.Result, err error) Event {
	evt := Event{
		LookupID:   lookupID,
		Action:     string(res.Action),
		Query:      query,
		StatusCode: res.StatusCode(),
		Body:       string(res.Body()),
		FetchedAt:  time.Now().UTC(),
	}
	if res.ValidationError != nil {
		evt.ValidationError = res.ValidationError.Message
	}
	if err != nil {
		evt.Error = err.Error()
	}
	return evt
}
