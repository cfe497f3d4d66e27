// AngelaMos | 2026
// worker.go

package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/carterperez-dev/kandi-backend/internal/core"
)

const enqueueTimeout = 3 * time.Second

// Dispatcher hands emails to the queue. Callers invoke it after their
// own write has committed; a failure here is logged and never returned.
type Dispatcher struct {
	queue  Queue
	logger *slog.Logger
}

func NewDispatcher(queue Queue, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{queue: queue, logger: logger}
}

func (d *Dispatcher) Notify(ctx context.Context, email Email) {
	if err := email.Validate(); err != nil {
		d.logger.WarnContext(ctx, "dropping invalid email", "kind", email.Kind, "error", err)
		core.ObserveNotification(email.Kind, "invalid")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()

	if err := d.queue.Add(ctx, email); err != nil {
		d.logger.ErrorContext(ctx, "failed to enqueue email",
			"kind", email.Kind,
			"to", email.To,
			"error", err,
		)
		core.ObserveNotification(email.Kind, "enqueue_failed")
		return
	}

	core.ObserveNotification(email.Kind, "queued")
}

// WorkerConfig tunes retries. ClaimIdle is how long an entry may sit
// un-acked before the worker reclaims it, and the interval between
// reclaim passes.
type WorkerConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	IdleDelay   time.Duration
	ClaimIdle   time.Duration
}

const defaultClaimIdle = time.Minute

// Worker drains the queue through a Mailer. A failed send is re-queued
// with an incremented attempt count and a RetryAt backoff until
// MaxAttempts, then dead-lettered. Anything the worker could not settle
// stays pending and is picked up again by the next reclaim pass.
type Worker struct {
	queue     Queue
	mailer    Mailer
	cfg       WorkerConfig
	logger    *slog.Logger
	now       func() time.Time
	lastClaim time.Time
}

func NewWorker(queue Queue, mailer Mailer, cfg WorkerConfig, logger *slog.Logger) *Worker {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.IdleDelay <= 0 {
		cfg.IdleDelay = time.Second
	}
	if cfg.ClaimIdle <= 0 {
		cfg.ClaimIdle = defaultClaimIdle
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		queue:  queue,
		mailer: mailer,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("notification worker started",
		"max_attempts", w.cfg.MaxAttempts,
		"claim_idle", w.cfg.ClaimIdle,
	)
	defer w.logger.Info("notification worker stopped")

	for ctx.Err() == nil {
		if err := w.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("notification poll failed", "error", err)
			sleep(ctx, w.cfg.IdleDelay)
		}
	}
}

// poll runs a reclaim pass when one is due, then reads new entries.
// The first poll always reclaims, so a restart picks up what the
// previous process left behind.
func (w *Worker) poll(ctx context.Context) error {
	if w.lastClaim.IsZero() || w.now().Sub(w.lastClaim) >= w.cfg.ClaimIdle {
		stale, err := w.queue.Reclaim(ctx, w.cfg.ClaimIdle)
		if err != nil {
			return err
		}
		w.lastClaim = w.now()
		if len(stale) > 0 {
			w.logger.Info("reclaimed pending notifications", "count", len(stale))
		}
		for _, msg := range stale {
			w.process(ctx, msg)
		}
	}

	msgs, err := w.queue.Read(ctx)
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		w.process(ctx, msg)
	}
	return nil
}

func (w *Worker) process(ctx context.Context, msg Message) {
	email := msg.Email

	if email.RetryAt > 0 && w.now().Unix() < email.RetryAt {
		// not due; stays pending until a later reclaim pass
		return
	}

	sendErr := w.mailer.Send(ctx, email)
	if sendErr == nil {
		core.ObserveNotification(email.Kind, "sent")
		w.ack(ctx, msg.ID)
		return
	}

	email.Attempt++
	logger := w.logger.With(
		"kind", email.Kind,
		"to", email.To,
		"attempt", email.Attempt,
		"error", sendErr,
	)

	if email.Attempt >= w.cfg.MaxAttempts {
		if err := w.queue.DeadLetter(ctx, email, sendErr.Error()); err != nil {
			// left un-acked for the next reclaim pass
			logger.Error("failed to dead-letter email", "dead_letter_error", err)
			return
		}
		logger.Error("email dead-lettered")
		core.ObserveNotification(email.Kind, "dead_lettered")
		w.ack(ctx, msg.ID)
		return
	}

	if w.cfg.RetryDelay > 0 {
		email.RetryAt = w.now().Add(w.cfg.RetryDelay * time.Duration(email.Attempt)).Unix()
	}

	if err := w.queue.Add(ctx, email); err != nil {
		// left un-acked for the next reclaim pass
		logger.Error("failed to requeue email", "requeue_error", err)
		return
	}
	logger.Warn("email send failed, requeued", "retry_at", email.RetryAt)
	core.ObserveNotification(email.Kind, "retried")
	w.ack(ctx, msg.ID)
}

func (w *Worker) ack(ctx context.Context, id string) {
	if err := w.queue.Ack(ctx, id); err != nil {
		w.logger.Error("failed to ack notification", "id", id, "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
