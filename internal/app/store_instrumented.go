package app

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/employee-registry/internal/data/store"
	"github.com/yungbote/employee-registry/internal/domain/employee"
	"github.com/yungbote/employee-registry/internal/observability"
)

type instrumentedStore struct {
	backend string
	inner   store.Store
	metrics *observability.Metrics
	tracer  trace.Tracer
}

func instrumentStore(backend string, inner store.Store, metrics *observability.Metrics) store.Store {
	if inner == nil {
		return nil
	}
	return &instrumentedStore{
		backend: backend,
		inner:   inner,
		metrics: metrics,
		tracer:  observability.Tracer("employee-registry/store"),
	}
}

func (s *instrumentedStore) start(ctx context.Context, op string) (context.Context, trace.Span, time.Time) {
	ctx, span := s.tracer.Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("store.backend", s.backend)),
	)
	return ctx, span, time.Now()
}

func (s *instrumentedStore) List(ctx context.Context) ([]*employee.Employee, error) {
	ctx, span, t0 := s.start(ctx, "list")
	out, err := s.inner.List(ctx)
	span.SetAttributes(attribute.Int("store.rows", len(out)))
	s.finish(span, "list", err, t0)
	return out, err
}

func (s *instrumentedStore) Get(ctx context.Context, id int64) (*employee.Employee, error) {
	ctx, span, t0 := s.start(ctx, "get")
	span.SetAttributes(attribute.Int64("employee.id", id))
	out, err := s.inner.Get(ctx, id)
	s.finish(span, "get", err, t0)
	return out, err
}

func (s *instrumentedStore) Insert(ctx context.Context, e *employee.Employee) error {
	ctx, span, t0 := s.start(ctx, "insert")
	err := s.inner.Insert(ctx, e)
	s.finish(span, "insert", err, t0)
	return err
}

func (s *instrumentedStore) Update(ctx context.Context, e *employee.Employee) error {
	ctx, span, t0 := s.start(ctx, "update")
	err := s.inner.Update(ctx, e)
	s.finish(span, "update", err, t0)
	return err
}

func (s *instrumentedStore) UpdateMany(ctx context.Context, list []*employee.Employee) error {
	ctx, span, t0 := s.start(ctx, "update_many")
	span.SetAttributes(attribute.Int("store.rows", len(list)))
	err := s.inner.UpdateMany(ctx, list)
	s.finish(span, "update_many", err, t0)
	return err
}

func (s *instrumentedStore) Delete(ctx context.Context, id int64) error {
	ctx, span, t0 := s.start(ctx, "delete")
	span.SetAttributes(attribute.Int64("employee.id", id))
	err := s.inner.Delete(ctx, id)
	s.finish(span, "delete", err, t0)
	return err
}

func (s *instrumentedStore) DeleteAll(ctx context.Context) (int64, error) {
	ctx, span, t0 := s.start(ctx, "delete_all")
	n, err := s.inner.DeleteAll(ctx)
	span.SetAttributes(attribute.Int64("store.rows", n))
	s.finish(span, "delete_all", err, t0)
	return n, err
}

func (s *instrumentedStore) Close() error {
	return s.inner.Close()
}

// finish records the outcome. A missing record is an expected answer, not a
// store failure.
func (s *instrumentedStore) finish(span trace.Span, op string, err error, t0 time.Time) {
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		status = "not_found"
	case errors.Is(err, store.ErrAlreadyExists):
		status = "exists"
	case errors.Is(err, store.ErrConflict):
		status = "conflict"
		span.SetStatus(codes.Error, err.Error())
	default:
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	if s.metrics != nil {
		s.metrics.ObserveStoreOperation(s.backend, op, status, time.Since(t0))
	}
}
