package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	hookDomain "github.com/bouncr/iam/internal/hook/domain"
)

// Config sizes the delivery worker pool.
type Config struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

type registration struct {
	id     uuid.UUID
	kinds  []hookDomain.EventKind
	target Target
}

type delivery struct {
	registrationID uuid.UUID
	event          *hookDomain.Event
	target         Target
}

type dispatcher struct {
	config Config
	logger *slog.Logger

	mu            sync.RWMutex
	registrations map[uuid.UUID]*registration
	closed        bool

	queue   chan delivery
	workers *errgroup.Group
}

// NewDispatcher starts the delivery workers and returns a Dispatcher.
func NewDispatcher(config Config, logger *slog.Logger) Dispatcher {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.QueueSize < 1 {
		config.QueueSize = 1
	}

	d := &dispatcher{
		config:        config,
		logger:        logger,
		registrations: make(map[uuid.UUID]*registration),
		queue:         make(chan delivery, config.QueueSize),
		workers:       &errgroup.Group{},
	}

	for i := 0; i < config.Workers; i++ {
		d.workers.Go(d.work)
	}

	return d
}

func (d *dispatcher) Register(kinds []hookDomain.EventKind, target Target) uuid.UUID {
	id := uuid.Must(uuid.NewV7())

	d.mu.Lock()
	defer d.mu.Unlock()
	d.registrations[id] = &registration{id: id, kinds: slices.Clone(kinds), target: target}

	return id
}

func (d *dispatcher) Unregister(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.registrations, id)
}

func (d *dispatcher) Dispatch(ctx context.Context, event *hookDomain.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.WarnContext(ctx, "hook dispatcher closed, dropping event",
			slog.String("event_kind", string(event.Kind)))
		return
	}

	for _, reg := range d.registrations {
		if !slices.Contains(reg.kinds, event.Kind) {
			continue
		}

		select {
		case d.queue <- delivery{registrationID: reg.id, event: event, target: reg.target}:
		default:
			d.logger.WarnContext(ctx, "hook queue full, dropping event",
				slog.String("event_id", event.ID.String()),
				slog.String("event_kind", string(event.Kind)),
				slog.String("registration_id", reg.id.String()),
			)
		}
	}
}

func (d *dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- d.workers.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *dispatcher) work() error {
	for job := range d.queue {
		d.deliver(job)
	}
	return nil
}

func (d *dispatcher) deliver(job delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.Timeout)
	defer cancel()

	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("hook panicked: %v", r)
			}
		}()
		return job.target.Deliver(ctx, job.event)
	}()

	attrs := []any{
		slog.String("event_id", job.event.ID.String()),
		slog.String("event_kind", string(job.event.Kind)),
		slog.String("registration_id", job.registrationID.String()),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		d.logger.Error("hook delivery failed", append(attrs, slog.Any("error", err))...)
		return
	}
	d.logger.Debug("hook delivered", attrs...)
}
