package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/webresolver-client/internal/logger"
	"github.com/samvad-hq/webresolver-client/internal/storage"
	"github.com/samvad-hq/webresolver-client/pkg/lookups"
	"github.com/samvad-hq/webresolver-client/pkg/sinks"
	"github.com/samvad-hq/webresolver-client/pkg/webresolver"
)

// Service executes configured lookups through the client, records them and
// forwards the results to the publisher.
type Service struct {
	client    LookupClient
	publisher EventPublisher
	history   History
	log       logger.Logger
	now       func() time.Time
}

// Summary counts what a Run did.
type Summary struct {
	Fetched  int
	Skipped  int
	Rejected int
	Failed   int
}

// NewService wires a runner. publisher, history and log are optional.
func NewService(client LookupClient, publisher EventPublisher, log logger.Logger, history History) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		client:    client,
		publisher: publisher,
		history:   history,
		log:       log,
		now:       time.Now,
	}
}

// Run executes a pass over all lookups. A failing lookup does not stop the
// others; their errors are joined. A cancelled context ends the pass early.
func (s *Service) Run(ctx context.Context, items []lookups.Lookup) (Summary, error) {
	if s == nil || s.client == nil {
		return Summary{}, fmt.Errorf("runner service is not initialized")
	}
	if len(items) == 0 {
		return Summary{}, fmt.Errorf("no lookups configured")
	}

	sum, errs := s.runAll(ctx, items)
	if len(errs) > 0 {
		return sum, errors.Join(errs...)
	}
	return sum, nil
}

func (s *Service) runAll(ctx context.Context, items []lookups.Lookup) (Summary, []error) {
	var (
		sum  Summary
		errs = make([]error, 0, len(items))
	)

	for _, l := range items {
		if ctx.Err() != nil {
			s.log.InfoObj("lookup pass interrupted", "reason", ctx.Err().Error())
			break
		}

		outcome, err := s.runLookup(ctx, l)
		switch outcome {
		case outcomeFetched:
			sum.Fetched++
		case outcomeSkipped:
			sum.Skipped++
		case outcomeRejected:
			sum.Rejected++
		case outcomeFailed:
			sum.Failed++
		}
		if err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("lookup failed", "lookup_error", map[string]any{
				"lookup_id": l.ID,
				"action":    l.Action,
				"error":     err.Error(),
			})
		}
	}

	return sum, errs
}

type outcome int

const (
	outcomeFetched outcome = iota + 1
	outcomeSkipped
	outcomeRejected
	outcomeFailed
)

func (s *Service) runLookup(ctx context.Context, l lookups.Lookup) (outcome, error) {
	key := l.StoreKey()
	if fresh, err := s.seen(key); err != nil {
		s.log.WarnObj("lookup history read failed", "history_error", map[string]any{
			"lookup_id": l.ID,
			"error":     err.Error(),
		})
	} else if fresh {
		s.log.DebugObj("lookup skipped, recent result stored", "lookup_id", l.ID)
		return outcomeSkipped, nil
	}

	res, err := s.client.Do(ctx, l.Request())
	if err != nil {
		lookupErr := fmt.Errorf("lookup %s: %w", l.ID, err)
		if pubErr := s.publish(ctx, sinks.NewEvent(l.ID, l.Query, res, err)); pubErr != nil {
			return outcomeFailed, errors.Join(lookupErr, pubErr)
		}
		return outcomeFailed, lookupErr
	}

	out := outcomeFetched
	if res.Invalid() {
		out = outcomeRejected
		s.log.WarnObj("lookup rejected locally", "lookup_validation", map[string]any{
			"lookup_id": l.ID,
			"action":    l.Action,
			"error":     res.ValidationError.Message,
		})
	}

	s.remember(key, l, res)

	if err := s.publish(ctx, sinks.NewEvent(l.ID, l.Query, res, nil)); err != nil {
		return out, fmt.Errorf("publish lookup %s: %w", l.ID, err)
	}

	s.log.InfoObj("lookup completed", "lookup_result", map[string]any{
		"lookup_id":  l.ID,
		"action":     l.Action,
		"status":     res.StatusCode(),
		"body_bytes": len(res.Body()),
		"rejected":   res.Invalid(),
	})
	return out, nil
}

func (s *Service) seen(key string) (bool, error) {
	if s.history == nil {
		return false, nil
	}
	_, found, err := s.history.Get(key)
	return found, err
}

func (s *Service) remember(key string, l lookups.Lookup, res webresolver.Result) {
	if s.history == nil {
		return
	}
	rec := storage.Record{
		Action:     l.Action,
		Query:      l.Query,
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
		FetchedAt:  s.now().UTC(),
	}
	if res.ValidationError != nil {
		rec.ValidationError = res.ValidationError.Message
	}
	if err := s.history.Put(key, rec); err != nil {
		s.log.WarnObj("lookup history write failed", "history_error", map[string]any{
			"lookup_id": l.ID,
			"error":     err.Error(),
		})
	}
}

func (s *Service) publish(ctx context.Context, evt sinks.Event) error {
	if s.publisher == nil {
		return nil
	}
	_, err := s.publisher.Publish(ctx, evt)
	return err
}
