package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"helpline-responder/internal/domain"
	"helpline-responder/internal/metrics"
)

const defaultDispatchLimit = 8

// EventRouter is satisfied by *Router.
type EventRouter interface {
	Route(ctx context.Context, ev domain.InboundEvent)
}

// Dispatcher fans a batch of events out to the router. Events are handled
// independently of each other; nothing orders two events for the same user.
type Dispatcher struct {
	router   EventRouter
	limit    int
	sync     bool
	inflight sync.WaitGroup
	logger   *slog.Logger
}

// NewDispatcher bounds each batch to limit concurrent events. With
// waitForBatch set, Dispatch returns only after every event of the batch was
// handled (needed where the runtime freezes once the response is returned).
func NewDispatcher(r EventRouter, limit int, waitForBatch bool, logger *slog.Logger) (*Dispatcher, error) {
	if r == nil {
		return nil, errors.New("usecase: event router must not be nil")
	}
	if limit <= 0 {
		limit = defaultDispatchLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{router: r, limit: limit, sync: waitForBatch, logger: logger}, nil
}

// Dispatch hands events to the router. The request context's cancellation is
// dropped so replies continue after the webhook has been acknowledged.
func (d *Dispatcher) Dispatch(ctx context.Context, events []domain.InboundEvent) {
	if len(events) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	d.inflight.Add(1)
	run := func() {
		defer d.inflight.Done()
		var g errgroup.Group
		g.SetLimit(d.limit)
		for _, ev := range events {
			ev := ev
			g.Go(func() error {
				d.route(ctx, ev)
				return nil
			})
		}
		_ = g.Wait()
	}

	if d.sync {
		run()
		return
	}
	go run()
}

// Wait blocks until every dispatched batch has finished.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

func (d *Dispatcher) route(ctx context.Context, ev domain.InboundEvent) {
	metrics.EventsInFlight.Inc()
	defer metrics.EventsInFlight.Dec()
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("event handler panicked", "kind", ev.Kind.String(), "sender", ev.SenderID, "panic", rec)
		}
	}()
	d.router.Route(ctx, ev)
}
