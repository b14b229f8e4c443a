package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/gopayments/internal/barrier"
	"github.com/iho/gopayments/internal/domain"
	"github.com/iho/gopayments/internal/gen"
	"github.com/iho/gopayments/internal/infrastructure/config"
	"github.com/iho/gopayments/internal/infrastructure/logger"
	"github.com/iho/gopayments/internal/infrastructure/metrics"
	"github.com/iho/gopayments/internal/ledger"
	"github.com/iho/gopayments/internal/pipeline"
	"github.com/iho/gopayments/internal/rates"
	"github.com/iho/gopayments/internal/sampler"
)

// handlerRelay breaks the construction cycle between the pipeline (which
// needs a response handler) and the router (which needs the pipeline's
// barrier). The inner handler is assigned before the pipeline starts.
type handlerRelay struct {
	inner pipeline.ResponseHandler
}

func (r *handlerRelay) CommandResult(timestamp, correlationID int64, code pipeline.ResultCode, request pipeline.RequestAccessor) {
	r.inner.CommandResult(timestamp, correlationID, code, request)
}

func (r *handlerRelay) BalanceUpdateEvent(account domain.AccountID, diff, newBalance int64) {
	r.inner.BalanceUpdateEvent(account, diff, newBalance)
}

func runBench(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	runID := ulid.Make().String()
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		RunID:  runID,
	})

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	srv := serveMetrics(cfg.MetricsAddr, registry)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().
		Int("accounts", cfg.Accounts).
		Int("transfers", cfg.Transfers).
		Int("currencies", cfg.Currencies).
		Int64("seed", cfg.Seed).
		Msg("starting benchmark")

	// Build the synthetic workload up front so the hot loop only submits.
	currencies := gen.RandomCurrencies(cfg.Currencies)
	baseRates := gen.RandomRates(currencies, cfg.RateSpread, cfg.Seed)

	genTable := rates.NewRateTable()
	gen.FillRateTable(genTable, baseRates)
	feeLimits := gen.FeeLimits(baseRates)

	accounts, err := gen.GenerateAccounts(cfg.Accounts, currencies, cfg.MaxAccountsPerClient, cfg.Seed)
	if err != nil {
		return err
	}
	secrets := gen.Secrets(accounts, cfg.Seed)

	orders, err := gen.GenerateTransfers(cfg.Transfers, accounts, feeLimits, genTable, secrets, cfg.Seed)
	if err != nil {
		return err
	}

	// Wire the pipeline, barrier and latency sampler.
	relay := &handlerRelay{}
	s := sampler.New(m.CommandLatency)

	pipe := pipeline.New(pipeline.Config{
		Ledger:           ledger.New(log),
		Rates:            rates.NewRateTable(),
		Fees:             rates.NewFeeSchedule(cfg.FeeRate),
		Handler:          relay,
		Logger:           log,
		Metrics:          m,
		BufferSize:       cfg.PipelineBuffer,
		VerifySignatures: cfg.VerifySignatures,
	})
	b := barrier.New(pipe, cfg.BarrierTimeout, m)
	relay.inner = barrier.NewRouter(b, s, log)

	pipe.Start()
	defer pipe.Stop()

	// Seed the pipeline state: rates, fee schedule, accounts and opening
	// balances all flow through the command stream.
	correlationID := int64(1)

	genTable.ForEach(func(from, to uint16, rate float64) {
		pipe.AdjustCurrencyRate(0, correlationID, from, to, rate)
		correlationID++
	})
	pipe.AdjustFee(0, correlationID, cfg.FeeRate, feeLimits)
	correlationID++

	for _, account := range accounts {
		pipe.OpenAccount(0, correlationID, account, secrets[account])
		correlationID++
	}

	// Every ramp step replays the same orders, so the opening balance has
	// to cover the worst case of all steps draining the same sources.
	steps := rampSteps(cfg)
	for account, balance := range gen.MaxBalances(orders, genTable) {
		pipe.BalanceCorrection(0, correlationID, account, balance*int64(steps))
		correlationID++
	}

	if err := b.FlushRetry(ctx, 0, barrier.EndBatchCode); err != nil {
		return err
	}
	log.Info().Int("accounts", len(accounts)).Int("steps", steps).Msg("ledger seeded")

	// Ramp the submission rate, one latency report per step.
	for tps := cfg.StartTPS; tps <= cfg.EndTPS; tps += cfg.StepTPS {
		if err := ctx.Err(); err != nil {
			return err
		}
		if steps <= 0 {
			break
		}
		steps--

		achieved, err := runStep(ctx, b, pipe, orders, tps, &correlationID)
		if err != nil {
			return err
		}

		log.Info().
			Int("target_tps", tps).
			Float64("achieved_tps", achieved).
			Msg("ramp step complete")
	}

	for _, currency := range currencies {
		if fees := pipe.CollectedFees(currency); fees > 0 {
			log.Info().Uint16("currency", currency).Int64("fees", fees).Msg("treasury balance")
		}
	}

	log.Info().Msg("benchmark complete")
	return nil
}

// runStep submits every order at the target rate, waits for the batch to
// drain through the pipeline and reports the achieved throughput.
func runStep(
	ctx context.Context,
	b *barrier.Barrier,
	pipe *pipeline.Pipeline,
	orders []*domain.TransferOrder,
	tps int,
	correlationID *int64,
) (float64, error) {
	epoch := time.Now().UnixNano()
	if err := b.FlushRetry(ctx, epoch, barrier.SetReferenceTimeCode); err != nil {
		return 0, err
	}

	interval := int64(time.Second) / int64(tps)
	started := time.Now()

	for i, order := range orders {
		// Planned offset from the epoch, in nanoseconds. The submitted
		// timestamp carries it in 1/1024-ns fixed point so the sampler
		// can charge scheduling delay against the command.
		planned := int64(i) * interval
		for time.Now().UnixNano()-epoch < planned {
		}

		pipe.SubmitTransferOrder(planned<<10, *correlationID, order)
		*correlationID++
	}

	if err := b.FlushRetry(ctx, 0, barrier.EndBatchCode); err != nil {
		return 0, err
	}
	elapsed := time.Since(started)

	if err := b.FlushRetry(ctx, 0, barrier.DumpStatsCode); err != nil {
		return 0, err
	}

	if elapsed <= 0 {
		return 0, errors.New("batch finished with zero elapsed time")
	}
	return float64(len(orders)) / elapsed.Seconds(), nil
}

func rampSteps(cfg *config.Config) int {
	if cfg.StepTPS <= 0 || cfg.EndTPS < cfg.StartTPS {
		return 0
	}

	steps := (cfg.EndTPS-cfg.StartTPS)/cfg.StepTPS + 1
	if cfg.Iterations > 0 && steps > cfg.Iterations {
		steps = cfg.Iterations
	}
	return steps
}

func serveMetrics(addr string, registry *prometheus.Registry) *http.Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}
