package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all benchmark driver configuration.
type Config struct {
	// Workload
	Seed                 int64 `env:"BENCH_SEED"                    envDefault:"1"`
	Accounts             int   `env:"BENCH_ACCOUNTS"                envDefault:"100000"`
	Transfers            int   `env:"BENCH_TRANSFERS"               envDefault:"100000"`
	Iterations           int   `env:"BENCH_ITERATIONS"              envDefault:"10"`
	Currencies           int   `env:"BENCH_CURRENCIES"              envDefault:"30"`
	MaxAccountsPerClient int   `env:"BENCH_MAX_ACCOUNTS_PER_CLIENT" envDefault:"40"`

	// Rates and fees
	RateSpread float64 `env:"BENCH_RATE_SPREAD" envDefault:"2.2"`
	FeeRate    float64 `env:"BENCH_FEE_RATE"    envDefault:"0.00375"`

	// Submission pacing (commands per second)
	StartTPS int `env:"BENCH_START_TPS" envDefault:"800000"`
	EndTPS   int `env:"BENCH_END_TPS"   envDefault:"7000000"`
	StepTPS  int `env:"BENCH_STEP_TPS"  envDefault:"100000"`

	// Pipeline
	PipelineBuffer   int           `env:"PIPELINE_BUFFER"    envDefault:"65536"`
	VerifySignatures bool          `env:"VERIFY_SIGNATURES"  envDefault:"true"`
	BarrierTimeout   time.Duration `env:"BARRIER_TIMEOUT"    envDefault:"30s"`

	// Observability
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT"   envDefault:"console"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
