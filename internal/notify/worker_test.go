// AngelaMos | 2026
// worker_test.go

package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQueue models a stream with one consumer group: Read hands out new
// entries once, and delivered entries stay in flight until acked.
type fakeQueue struct {
	mu           sync.Mutex
	stream       []Message
	inFlight     []Message
	added        []Email
	acked        []string
	dead         []Email
	addErr       error
	addFailures  int
	deadFailures int
	reclaims     int
	nextID       int
}

func (q *fakeQueue) Add(_ context.Context, email Email) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.addErr != nil {
		return q.addErr
	}
	if q.addFailures > 0 {
		q.addFailures--
		return errors.New("xadd failed")
	}
	q.nextID++
	q.added = append(q.added, email)
	q.stream = append(q.stream, Message{ID: fmt.Sprintf("%d-0", q.nextID), Email: email})
	return nil
}

func (q *fakeQueue) Read(_ context.Context) ([]Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.stream
	q.stream = nil
	q.inFlight = append(q.inFlight, out...)
	return out, nil
}

func (q *fakeQueue) Reclaim(_ context.Context, _ time.Duration) ([]Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.reclaims++
	return append([]Message(nil), q.inFlight...), nil
}

func (q *fakeQueue) Ack(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, id)
	for i, msg := range q.inFlight {
		if msg.ID == id {
			q.inFlight = append(q.inFlight[:i], q.inFlight[i+1:]...)
			break
		}
	}
	return nil
}

func (q *fakeQueue) DeadLetter(_ context.Context, email Email, _ string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.deadFailures > 0 {
		q.deadFailures--
		return errors.New("dead letter stream unavailable")
	}
	q.dead = append(q.dead, email)
	return nil
}

type fakeMailer struct {
	failures int
	calls    int
	sent     []Email
}

func (m *fakeMailer) Send(_ context.Context, email Email) error {
	m.calls++
	if m.failures > 0 {
		m.failures--
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, email)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcherNotifyQueuesEmail(t *testing.T) {
	q := &fakeQueue{}
	d := NewDispatcher(q, quietLogger())

	d.Notify(context.Background(), ThreadInviteEmail("a@x.com", "Beads", "https://x/accept"))

	require.Len(t, q.added, 1)
	assert.Equal(t, KindThreadInvite, q.added[0].Kind)
	assert.Equal(t, "a@x.com", q.added[0].To)
}

func TestDispatcherSwallowsQueueFailure(t *testing.T) {
	q := &fakeQueue{addErr: errors.New("redis down")}
	d := NewDispatcher(q, quietLogger())

	assert.NotPanics(t, func() {
		d.Notify(context.Background(), PasswordResetEmail("a@x.com", "123456"))
	})
	assert.Empty(t, q.added)
}

func TestDispatcherDropsInvalidEmail(t *testing.T) {
	q := &fakeQueue{}
	d := NewDispatcher(q, quietLogger())

	d.Notify(context.Background(), Email{Kind: KindContact, To: "  "})
	d.Notify(context.Background(), Email{Kind: KindContact, To: "a@x.com", Subject: "hi\r\nBcc: b@x.com"})

	assert.Empty(t, q.added)
}

func TestWorkerSendsAndAcks(t *testing.T) {
	q := &fakeQueue{}
	m := &fakeMailer{}
	w := NewWorker(q, m, WorkerConfig{MaxAttempts: 3}, quietLogger())

	require.NoError(t, q.Add(context.Background(), ContactEmail("s@x.com", "Ann", "ann@x.com", "hello")))
	require.NoError(t, w.poll(context.Background()))

	require.Len(t, m.sent, 1)
	assert.Equal(t, []string{"1-0"}, q.acked)
	assert.Empty(t, q.dead)
}

func TestWorkerRetriesThenSucceeds(t *testing.T) {
	q := &fakeQueue{}
	m := &fakeMailer{failures: 1}
	w := NewWorker(q, m, WorkerConfig{MaxAttempts: 3}, quietLogger())

	require.NoError(t, q.Add(context.Background(), PurchaseAcceptedEmail("b@x.com", "Moon")))

	require.NoError(t, w.poll(context.Background()))
	require.Len(t, q.added, 2)
	assert.Equal(t, 1, q.added[1].Attempt)
	assert.Empty(t, m.sent)

	require.NoError(t, w.poll(context.Background()))
	require.Len(t, m.sent, 1)
	assert.Equal(t, 1, m.sent[0].Attempt)
	assert.Len(t, q.acked, 2)
}

func TestWorkerDeadLettersAfterMaxAttempts(t *testing.T) {
	q := &fakeQueue{}
	m := &fakeMailer{failures: 10}
	w := NewWorker(q, m, WorkerConfig{MaxAttempts: 2}, quietLogger())

	require.NoError(t, q.Add(context.Background(), PurchaseAcceptedEmail("b@x.com", "Moon")))

	require.NoError(t, w.poll(context.Background()))
	require.NoError(t, w.poll(context.Background()))
	require.NoError(t, w.poll(context.Background()))

	require.Len(t, q.dead, 1)
	assert.Equal(t, 2, q.dead[0].Attempt)
	assert.Empty(t, m.sent)
	assert.Empty(t, q.stream)
	assert.Empty(t, q.inFlight)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedWorker(q Queue, m Mailer, cfg WorkerConfig) (*Worker, *clock) {
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	w := NewWorker(q, m, cfg, quietLogger())
	w.now = c.now
	return w, c
}

func TestWorkerRedeliversWhenRequeueFails(t *testing.T) {
	q := &fakeQueue{}
	m := &fakeMailer{failures: 1}
	w, c := newClockedWorker(q, m, WorkerConfig{MaxAttempts: 3, ClaimIdle: time.Minute})
	ctx := context.Background()

	require.NoError(t, q.Add(ctx, PurchaseAcceptedEmail("b@x.com", "Moon")))
	q.addFailures = 1

	require.NoError(t, w.poll(ctx))
	assert.Equal(t, 1, m.calls)
	assert.Empty(t, q.acked)
	require.Len(t, q.inFlight, 1)

	require.NoError(t, w.poll(ctx))
	assert.Equal(t, 1, m.calls, "no reclaim before the idle threshold")

	c.advance(time.Minute)
	require.NoError(t, w.poll(ctx))
	assert.Equal(t, 2, m.calls)
	require.Len(t, m.sent, 1)
	assert.Equal(t, []string{"1-0"}, q.acked)
	assert.Empty(t, q.inFlight)
}

func TestWorkerRedeliversWhenDeadLetterFails(t *testing.T) {
	q := &fakeQueue{deadFailures: 1}
	m := &fakeMailer{failures: 10}
	w, c := newClockedWorker(q, m, WorkerConfig{MaxAttempts: 1, ClaimIdle: time.Minute})
	ctx := context.Background()

	require.NoError(t, q.Add(ctx, ContactEmail("s@x.com", "Ann", "ann@x.com", "hello")))

	require.NoError(t, w.poll(ctx))
	assert.Empty(t, q.dead)
	assert.Len(t, q.inFlight, 1)

	c.advance(2 * time.Minute)
	require.NoError(t, w.poll(ctx))
	require.Len(t, q.dead, 1)
	assert.Equal(t, 1, q.dead[0].Attempt)
	assert.Empty(t, q.inFlight)
}

func TestWorkerReclaimsOnStartup(t *testing.T) {
	q := &fakeQueue{}
	m := &fakeMailer{}
	ctx := context.Background()

	require.NoError(t, q.Add(ctx, ContactEmail("s@x.com", "Ann", "ann@x.com", "hello")))
	_, err := q.Read(ctx)
	require.NoError(t, err)

	w, _ := newClockedWorker(q, m, WorkerConfig{MaxAttempts: 3})
	require.NoError(t, w.poll(ctx))

	assert.Equal(t, 1, q.reclaims)
	require.Len(t, m.sent, 1)
	assert.Empty(t, q.inFlight)
}

func TestWorkerRetryDoesNotBlockOtherEmails(t *testing.T) {
	q := &fakeQueue{}
	m := &fakeMailer{failures: 1}
	w, c := newClockedWorker(q, m, WorkerConfig{
		MaxAttempts: 3,
		RetryDelay:  10 * time.Minute,
		ClaimIdle:   time.Minute,
	})
	ctx := context.Background()

	require.NoError(t, q.Add(ctx, PurchaseAcceptedEmail("a@x.com", "Moon")))
	require.NoError(t, q.Add(ctx, PurchaseAcceptedEmail("b@x.com", "Sun")))

	require.NoError(t, w.poll(ctx))
	require.Len(t, m.sent, 1)
	assert.Equal(t, "b@x.com", m.sent[0].To)
	require.Len(t, q.added, 3)
	assert.Equal(t, c.now().Add(10*time.Minute).Unix(), q.added[2].RetryAt)

	require.NoError(t, w.poll(ctx))
	assert.Equal(t, 2, m.calls, "retry is not sent before it is due")
	assert.Len(t, q.inFlight, 1)

	c.advance(5 * time.Minute)
	require.NoError(t, w.poll(ctx))
	assert.Equal(t, 2, m.calls)

	c.advance(6 * time.Minute)
	require.NoError(t, w.poll(ctx))
	require.Len(t, m.sent, 2)
	assert.Equal(t, "a@x.com", m.sent[1].To)
	assert.Equal(t, 1, m.sent[1].Attempt)
	assert.Empty(t, q.inFlight)
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := string(buildMessage("no-reply@x.com", Email{To: "a@x.com", Subject: "Hi", Body: "line1\nline2"}))

	assert.Contains(t, msg, "From: no-reply@x.com\r\n")
	assert.Contains(t, msg, "To: a@x.com\r\n")
	assert.Contains(t, msg, "Subject: Hi\r\n")
	assert.Contains(t, msg, "line1\r\nline2")
}
