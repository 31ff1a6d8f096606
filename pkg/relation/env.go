package relation

import (
	"log/slog"
	"strconv"
	"sync/atomic"

	"relstore/pkg/logging"
	"relstore/pkg/storage/index/linhash"
)

// Config controls how tables created in an Env are indexed and where their
// relational-algebra trace is logged.
type Config struct {
	Index linhash.Config

	// Logger receives the operator trace. Nil means the process-wide logger.
	Logger *slog.Logger
}

// DefaultConfig returns the default index configuration and the global logger.
func DefaultConfig() Config {
	return Config{Index: linhash.DefaultConfig()}
}

// Env is the context shared by a family of tables. It owns the counter used
// to name derived tables, so two environments never interfere.
type Env struct {
	cfg     Config
	derived atomic.Int64
}

// NewEnv creates an environment with cfg.
func NewEnv(cfg Config) *Env {
	return &Env{cfg: cfg}
}

// Config returns the configuration the environment was created with.
func (e *Env) Config() Config {
	return e.cfg
}

// derivedName returns base followed by the next value of the derived counter.
func (e *Env) derivedName(base string) string {
	n := e.derived.Add(1) - 1
	return base + strconv.FormatInt(n, 10)
}

func (e *Env) logger(table, op string) *slog.Logger {
	if e.cfg.Logger == nil {
		if op == "" {
			return logging.WithTable(table)
		}
		return logging.WithOp(table, op)
	}

	l := e.cfg.Logger.With("table", table)
	if op != "" {
		l = l.With("op", op)
	}
	return l
}
