package barrier

import (
	"github.com/rs/zerolog"

	"github.com/iho/gopayments/internal/domain"
	"github.com/iho/gopayments/internal/pipeline"
	"github.com/iho/gopayments/internal/sampler"
)

// Router is the driver-side response handler: control results release the
// barrier after their reserved instruction is interpreted against the
// sampler, every other result feeds the latency recorder. It runs on the
// pipeline's delivery goroutine.
type Router struct {
	barrier *Barrier
	sampler *sampler.Sampler
	log     zerolog.Logger
}

// NewRouter wires the handler. The sampler may be shared with a reporting
// loop; the barrier must be the one the driver flushes on.
func NewRouter(b *Barrier, s *sampler.Sampler, log zerolog.Logger) *Router {
	return &Router{
		barrier: b,
		sampler: s,
		log:     log,
	}
}

// CommandResult implements pipeline.ResponseHandler.
func (r *Router) CommandResult(timestamp, correlationID int64, resultCode pipeline.ResultCode, request pipeline.RequestAccessor) {
	control, ok := request.(pipeline.ControlAccessor)
	if !ok || request.Kind() != pipeline.CmdControl {
		r.sampler.Record(timestamp)
		return
	}

	switch control.Instruction() {
	case SetReferenceTimeCode:
		r.sampler.SetReference(timestamp)
	case EndBatchCode:
		r.sampler.ClearReference()
	case DumpStatsCode:
		report := r.sampler.Drain()
		event := r.log.Info().
			Int64("samples", report.Count).
			Dur("max", report.Max)
		for percentile, value := range report.Percentiles {
			event = event.Dur(percentileLabel(percentile), value)
		}
		event.Msg("interval latency report")
	}

	r.barrier.Release(correlationID)
}

// BalanceUpdateEvent implements pipeline.ResponseHandler. The benchmark
// driver has no balance observers; committed changes are visible to tests
// through the pipeline's read queries.
func (r *Router) BalanceUpdateEvent(account domain.AccountID, diff, newBalance int64) {
	r.log.Trace().
		Int64("account", int64(account)).
		Int64("diff", diff).
		Int64("balance", newBalance).
		Msg("balance update")
}

func percentileLabel(p float64) string {
	switch p {
	case 50:
		return "p50"
	case 90:
		return "p90"
	case 95:
		return "p95"
	case 99:
		return "p99"
	case 99.9:
		return "p99_9"
	case 99.99:
		return "p99_99"
	default:
		return "p"
	}
}
