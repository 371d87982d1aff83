// internal/store/instrumented.go
package store

import (
	"context"
	"errors"

	"storyhub/internal/observability/metrics"
)

// Outcome labels for store operation metrics
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

type instrumented struct {
	Store
	metrics *metrics.Collector
}

// Instrument wraps s so every operation is counted by collection, operation and outcome
func Instrument(s Store, m *metrics.Collector) Store {
	return &instrumented{Store: s, metrics: m}
}

func (s *instrumented) record(collection, operation string, err error) error {
	s.metrics.RecordStoreOperation(collection, operation, outcome(err))
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrDuplicate):
		return OutcomeDuplicate
	default:
		return OutcomeError
	}
}

func (s *instrumented) FindByID(ctx context.Context, collection, id string, out any, opts ...FindOption) error {
	return s.record(collection, "find_by_id", s.Store.FindByID(ctx, collection, id, out, opts...))
}

func (s *instrumented) FindOne(ctx context.Context, collection string, filter Filter, out any, opts ...FindOption) error {
	return s.record(collection, "find_one", s.Store.FindOne(ctx, collection, filter, out, opts...))
}

func (s *instrumented) Find(ctx context.Context, collection string, filter Filter, out any, opts ...FindOption) error {
	return s.record(collection, "find", s.Store.Find(ctx, collection, filter, out, opts...))
}

func (s *instrumented) Save(ctx context.Context, collection string, doc Document) error {
	return s.record(collection, "save", s.Store.Save(ctx, collection, doc))
}

func (s *instrumented) DeleteOne(ctx context.Context, collection, id string) error {
	return s.record(collection, "delete_one", s.Store.DeleteOne(ctx, collection, id))
}
