// Package barrier layers a synchronization protocol over the pipeline: a
// driver submits a sentinel control command and blocks until the matching
// response is observed, at which point every command submitted earlier is
// guaranteed fully applied. It is a protocol, not a stored structure; the
// only state is a correlation counter and a single-slot rendezvous channel.
package barrier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/iho/gopayments/internal/infrastructure/metrics"
)

// Reserved opaque instruction codes interpreted by the response router.
// The magic values can never collide with legitimate business data.
const (
	SetReferenceTimeCode int64 = 8121092016521817263
	EndBatchCode         int64 = 7293651321864826354
	DumpStatsCode        int64 = 1073923874826736264
)

// ErrFlushTimeout is returned when the pipeline fails to acknowledge a
// checkpoint within the configured timeout. A benchmark driver should treat
// it as fatal; a production client may retry via FlushRetry.
var ErrFlushTimeout = errors.New("barrier flush timed out waiting for control response")

// ProtocolViolation signals that the pipeline delivered a control response
// out of order. Ordering is a precondition for every other guarantee in the
// system, so a violation invalidates all subsequent reasoning; it is raised
// as a panic and must terminate the driver.
type ProtocolViolation struct {
	Expected int64
	Received int64
}

func (v *ProtocolViolation) Error() string {
	return fmt.Sprintf("pipeline ordering violated: expected control correlation %d, received %d", v.Expected, v.Received)
}

// ControlSubmitter is the slice of the pipeline the barrier needs.
type ControlSubmitter interface {
	Control(timestamp, correlationID, instruction int64)
}

// Barrier issues checkpoint commands with a strictly increasing correlation
// counter, distinct from business-command correlation ids. The single-slot
// rendezvous channel enforces at most one outstanding checkpoint; submitting
// a second before the first is acknowledged is a caller error.
type Barrier struct {
	pipe    ControlSubmitter
	sync    chan int64
	counter int64
	timeout time.Duration
	metrics *metrics.Metrics
}

// New creates a barrier over the pipeline. A zero timeout disables the bound:
// Flush then blocks until the response arrives and only FlushRetry's context
// can abort the wait.
func New(pipe ControlSubmitter, timeout time.Duration, m *metrics.Metrics) *Barrier {
	return &Barrier{
		pipe:    pipe,
		sync:    make(chan int64, 1),
		timeout: timeout,
		metrics: m,
	}
}

// Release hands a control response's correlation id to the waiting flusher.
// Called by the response router, potentially on a different goroutine than
// the submitter.
func (b *Barrier) Release(correlationID int64) {
	b.sync <- correlationID
}

// Flush submits a control command carrying the instruction and blocks until
// the matching response is observed. On return, every command submitted
// before the flush is fully applied. A correlation mismatch panics with
// ProtocolViolation.
func (b *Barrier) Flush(timestamp, instruction int64) error {
	b.counter++
	b.pipe.Control(timestamp, b.counter, instruction)

	if err := b.await(context.Background()); err != nil {
		return err
	}

	b.metrics.BarrierFlushes.Inc()
	return nil
}

// FlushRetry behaves like Flush but keeps waiting through timeouts with
// exponential backoff until the response arrives or ctx is cancelled. The
// control command is submitted exactly once; only the wait is retried.
func (b *Barrier) FlushRetry(ctx context.Context, timestamp, instruction int64) error {
	b.counter++
	b.pipe.Control(timestamp, b.counter, instruction)

	wait := func() error {
		return b.await(ctx)
	}

	if err := backoff.Retry(wait, backoff.WithContext(backoff.NewExponentialBackOff(), ctx)); err != nil {
		return err
	}

	b.metrics.BarrierFlushes.Inc()
	return nil
}

func (b *Barrier) await(ctx context.Context) error {
	started := time.Now()

	// a nil timeout channel never fires, giving the unbounded wait
	var timeoutC <-chan time.Time
	if b.timeout > 0 {
		timer := time.NewTimer(b.timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case received := <-b.sync:
		b.metrics.BarrierWaitDuration.Observe(time.Since(started).Seconds())
		b.check(received)
		return nil
	case <-timeoutC:
		return ErrFlushTimeout
	case <-ctx.Done():
		return backoff.Permanent(ctx.Err())
	}
}

func (b *Barrier) check(received int64) {
	if received != b.counter {
		panic(&ProtocolViolation{Expected: b.counter, Received: received})
	}
}
