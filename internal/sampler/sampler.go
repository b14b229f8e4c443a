// Package sampler turns response timestamps into interval latency
// statistics. Submitted timestamps are relative fixed-point values in
// 1/1024-nanosecond units; a latency is only meaningful while a reference
// epoch is set, which the barrier's reset-reference-time instruction
// controls.
package sampler

import (
	"math"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
)

var reportPercentiles = []float64{50, 90, 95, 99, 99.9, 99.99}

// Sampler records per-response latencies into an interval histogram. The
// recorder side is effectively single-writer (the response handler), but
// draining is guarded so a report never blocks ongoing recording for longer
// than a swap.
type Sampler struct {
	mu       sync.Mutex
	interval *hdrhistogram.Histogram
	spare    *hdrhistogram.Histogram
	armed    bool  // set between SetReference and ClearReference
	epoch    int64 // reference time in ns; only meaningful while armed
	observer prometheus.Observer
	nowNano  func() int64
}

// New creates a sampler. observer may be nil when no Prometheus mirroring is
// wanted.
func New(observer prometheus.Observer) *Sampler {
	return &Sampler{
		interval: hdrhistogram.New(1, math.MaxInt32, 2),
		spare:    hdrhistogram.New(1, math.MaxInt32, 2),
		observer: observer,
		nowNano:  func() int64 { return time.Now().UnixNano() },
	}
}

// SetReference clears recorded samples and restarts the epoch. Triggered by
// the reset-reference-time instruction before a batch begins.
func (s *Sampler) SetReference(epochNano int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.interval.Reset()
	s.armed = true
	s.epoch = epochNano
}

// ClearReference unsets the epoch so trailing asynchronous results are not
// mis-timed against a stale reference. Triggered by the end-of-batch
// instruction.
func (s *Sampler) ClearReference() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.armed = false
	s.epoch = 0
}

// Record computes and records the latency of one response, given its
// submitted relative timestamp in 1/1024-ns units. Responses arriving while
// no reference is armed are ignored. A zero epoch is a legitimate reference
// value, so arming is tracked separately from the epoch itself.
func (s *Sampler) Record(submittedTimestamp int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.armed {
		return
	}

	latency := s.nowNano() - s.epoch - (submittedTimestamp >> 10)
	if latency < 0 {
		latency = 0
	}

	// values above the histogram's trackable range are clamped, not lost
	if latency > math.MaxInt32 {
		latency = math.MaxInt32
	}
	_ = s.interval.RecordValue(latency)

	if s.observer != nil {
		s.observer.Observe(float64(latency) / float64(time.Second))
	}
}

// Report is an interval percentile summary in nanoseconds.
type Report struct {
	Count       int64
	Max         time.Duration
	Percentiles map[float64]time.Duration
}

// Drain atomically swaps in a fresh interval histogram and summarizes the
// drained one, so percentile reporting never blocks ongoing recording.
// Single consumer: Drain must not be called concurrently with itself.
func (s *Sampler) Drain() Report {
	s.mu.Lock()
	drained := s.interval
	s.interval = s.spare
	s.spare = drained
	s.mu.Unlock()

	report := Report{
		Count:       drained.TotalCount(),
		Max:         time.Duration(drained.Max()),
		Percentiles: make(map[float64]time.Duration, len(reportPercentiles)),
	}
	for _, p := range reportPercentiles {
		report.Percentiles[p] = time.Duration(drained.ValueAtQuantile(p))
	}

	drained.Reset()
	return report
}
