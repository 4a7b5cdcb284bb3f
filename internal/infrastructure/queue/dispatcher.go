package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/acme/catalog-system/internal/api/metrics"
	"github.com/acme/catalog-system/internal/core/ports"
)

const (
	defaultWorkers = 2
	defaultBuffer  = 64
)

// ErrQueueFull is returned by Send when no slot is free.
var ErrQueueFull = errors.New("notification queue full")

var _ ports.NotificationSender = (*Dispatcher)(nil)

// Dispatcher hands notifications to a fixed set of workers so callers never
// wait for delivery. It satisfies ports.NotificationSender itself.
type Dispatcher struct {
	queue   chan ports.Mail
	workers int
	sender  ports.NotificationSender
	timeout time.Duration
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher delivering through sender.
// If workers or buffer are <= 0, defaults are used.
func NewDispatcher(sender ports.NotificationSender, workers, buffer int, timeout time.Duration, log zerolog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Dispatcher{
		queue:   make(chan ports.Mail, buffer),
		workers: workers,
		sender:  sender,
		timeout: timeout,
		log:     log,
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.runWorker(ctx, i)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Send enqueues m without blocking.
func (d *Dispatcher) Send(_ context.Context, m ports.Mail) error {
	select {
	case d.queue <- m:
		metrics.NotificationQueueDepth.Set(float64(len(d.queue)))
		return nil
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-d.queue:
			metrics.NotificationQueueDepth.Set(float64(len(d.queue)))
			d.deliver(ctx, id, m)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, m ports.Mail) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	err := d.sender.Send(ctx, m)
	metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("subject", m.Subject).
			Int("worker_id", id).
			Msg("notification delivery failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}
