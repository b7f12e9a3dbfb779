// README: Config loader with env defaults for the simulation, pricing, passenger budgets, DB, Redis and HTTP.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

var ErrInvalid = errors.New("invalid config")

type SimConfig struct {
	Ticks     int
	GridX     int
	GridY     int
	Vehicles  int
	Requests  int
	Capacity  int
	Sharing   bool
	NodeLimit int
	// TimeOut is the number of ticks an unmatched request waits between
	// attempts; RetryCap <= 0 retries forever.
	TimeOut  int
	RetryCap int
	Seed     int64
	Shuffle  bool
	Strict   bool
	Idle     string
}

type PricingConfig struct {
	Warmup   int
	Interval int
	RateMin  float64
	RateMax  float64
}

type ToleranceConfig struct {
	BudgetBase   float64
	BudgetFactor float64
	PowerMin     float64
	PowerMax     float64
}

type SweepConfig struct {
	Runs    int
	Workers int
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	Sim       SimConfig
	Pricing   PricingConfig
	Tolerance ToleranceConfig
	Sweep     SweepConfig
}

// Load reads the environment. An empty DB DSN or Redis address disables
// export to that backend.
func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("SHARESIM_HTTP_ADDR", ":8080")
	cfg.DB.DSN = envOrDefault("SHARESIM_DB_DSN", "")
	cfg.Redis.Addr = envOrDefault("SHARESIM_REDIS_ADDR", "")

	cfg.Sim.Ticks = envOrDefaultInt("SHARESIM_TICKS", 100)
	cfg.Sim.GridX = envOrDefaultInt("SHARESIM_GRID_X", 20)
	cfg.Sim.GridY = envOrDefaultInt("SHARESIM_GRID_Y", 20)
	cfg.Sim.Vehicles = envOrDefaultInt("SHARESIM_VEHICLES", 10)
	cfg.Sim.Requests = envOrDefaultInt("SHARESIM_REQUESTS", 100)
	cfg.Sim.Capacity = envOrDefaultInt("SHARESIM_CAPACITY", 4)
	cfg.Sim.Sharing = envOrDefaultBool("SHARESIM_SHARING", true)
	cfg.Sim.NodeLimit = envOrDefaultInt("SHARESIM_NODE_LIMIT", 5)
	cfg.Sim.TimeOut = envOrDefaultInt("SHARESIM_TIMEOUT", 20)
	cfg.Sim.RetryCap = envOrDefaultInt("SHARESIM_RETRY_CAP", 0)
	cfg.Sim.Seed = int64(envOrDefaultInt("SHARESIM_SEED", 1))
	cfg.Sim.Shuffle = envOrDefaultBool("SHARESIM_SHUFFLE", false)
	cfg.Sim.Strict = envOrDefaultBool("SHARESIM_STRICT", false)
	cfg.Sim.Idle = envOrDefault("SHARESIM_IDLE", "hold")

	cfg.Pricing.Warmup = envOrDefaultInt("SHARESIM_PRICE_WARMUP", cfg.Sim.Ticks/10)
	cfg.Pricing.Interval = envOrDefaultInt("SHARESIM_PRICE_INTERVAL", 10)
	cfg.Pricing.RateMin = envOrDefaultFloat("SHARESIM_RATE_MIN", 0.8)
	cfg.Pricing.RateMax = envOrDefaultFloat("SHARESIM_RATE_MAX", 1.2)

	cfg.Tolerance.BudgetBase = envOrDefaultFloat("SHARESIM_BUDGET_BASE", 10)
	cfg.Tolerance.BudgetFactor = envOrDefaultFloat("SHARESIM_BUDGET_FACTOR", 1.2)
	cfg.Tolerance.PowerMin = envOrDefaultFloat("SHARESIM_POWER_MIN", 0.7)
	cfg.Tolerance.PowerMax = envOrDefaultFloat("SHARESIM_POWER_MAX", 1.1)

	cfg.Sweep.Runs = envOrDefaultInt("SHARESIM_SWEEP_RUNS", 1)
	cfg.Sweep.Workers = envOrDefaultInt("SHARESIM_WORKERS", 4)

	return cfg, cfg.Validate()
}

// Validate reports the first setting a simulation cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Sim.Ticks <= 0:
		return fmt.Errorf("%w: ticks must be positive", ErrInvalid)
	case c.Sim.GridX <= 0 || c.Sim.GridY <= 0:
		return fmt.Errorf("%w: grid must be positive", ErrInvalid)
	case c.Sim.Vehicles <= 0:
		return fmt.Errorf("%w: fleet size must be positive", ErrInvalid)
	case c.Sim.Requests < 0:
		return fmt.Errorf("%w: request count must not be negative", ErrInvalid)
	case c.Sim.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive", ErrInvalid)
	case c.Sim.NodeLimit <= 0:
		return fmt.Errorf("%w: node limit must be positive", ErrInvalid)
	case c.Sim.TimeOut < 0:
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalid)
	case c.Sim.Idle != "hold" && c.Sim.Idle != "wander":
		return fmt.Errorf("%w: idle policy %q", ErrInvalid, c.Sim.Idle)
	case c.Pricing.Interval < 0 || c.Pricing.Warmup < 0:
		return fmt.Errorf("%w: pricing warmup and interval must not be negative", ErrInvalid)
	case c.Pricing.RateMin <= 0 || c.Pricing.RateMax < c.Pricing.RateMin:
		return fmt.Errorf("%w: rate range [%v, %v]", ErrInvalid, c.Pricing.RateMin, c.Pricing.RateMax)
	case c.Tolerance.PowerMin <= 0 || c.Tolerance.PowerMax < c.Tolerance.PowerMin:
		return fmt.Errorf("%w: power range [%v, %v]", ErrInvalid, c.Tolerance.PowerMin, c.Tolerance.PowerMax)
	case c.Sweep.Runs <= 0 || c.Sweep.Workers <= 0:
		return fmt.Errorf("%w: sweep runs and workers must be positive", ErrInvalid)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
