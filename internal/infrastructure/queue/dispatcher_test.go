package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/acme/catalog-system/internal/core/ports"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []ports.Mail
	err  error
}

func (s *recordingSender) Send(_ context.Context, m ports.Mail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestDispatcher_DeliversAsync(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 2, 8, time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	for i := 0; i < 5; i++ {
		if err := d.Send(context.Background(), ports.Mail{Subject: "s"}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	waitFor(t, func() bool { return sender.count() == 5 })

	cancel()
	d.Wait()
}

func TestDispatcher_FullQueueDoesNotBlock(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 1, 1, 0, zerolog.Nop())

	// Not started: the single slot fills and the next send is refused.
	if err := d.Send(context.Background(), ports.Mail{}); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := d.Send(context.Background(), ports.Mail{}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestDispatcher_FailuresAreSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, 1, 4, time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	if err := d.Send(context.Background(), ports.Mail{}); err != nil {
		t.Fatalf("send must not surface delivery errors: %v", err)
	}
	waitFor(t, func() bool { return sender.count() == 1 })
}
