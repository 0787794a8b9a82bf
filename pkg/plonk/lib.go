package plonk

import (
	"context"
	"sync"
	"sync/atomic"

	gnarklogger "github.com/consensys/gnark/logger"

	"github.com/marlinplonk/plonk-go/internal/registry"
	"github.com/marlinplonk/plonk-go/pkg/plonk/logging"
)

var current atomic.Pointer[loggerBox]

type loggerBox struct{ l logging.Logger }

func init() {
	current.Store(&loggerBox{l: logging.Discard()})
}

// Logger returns the logger installed by the most recent Open.
func Logger() logging.Logger {
	return current.Load().l
}

func setLogger(l logging.Logger) logging.Logger {
	return current.Swap(&loggerBox{l: l}).l
}

// Library represents an opened configuration. While it is open, new handles
// are allocated from a registry that enforces the configured budget.
type Library struct {
	mu     sync.Mutex
	cfg    Config
	reg    *registry.Registry
	prev   *registry.Registry
	prevLg logging.Logger
	closed bool
}

// Open installs cfg for the process. Handles allocated before Open stay
// valid; they remain in the registry that issued them.
func Open(cfg Config) (*Library, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Wrap("Open", err)
	}
	log := logging.New(cfg.Logger)
	reg := registry.New(
		registry.WithBudget(cfg.MemoryBudget),
		registry.WithObserver(&observer{log: log}),
	)
	if cfg.GnarkLogs {
		gnarklogger.Set(logging.Zerolog(log.With("component", "gnark")))
	} else {
		gnarklogger.Disable()
	}

	l := &Library{cfg: cfg, reg: reg}
	l.prev = registry.SetDefault(reg)
	l.prevLg = setLogger(log)
	log.Debug(context.Background(), "library opened", "memory_budget", cfg.MemoryBudget)
	return l, nil
}

// Config returns the configuration l was opened with.
func (l *Library) Config() Config {
	return l.cfg
}

// Close restores the registry and logger that were active before Open. The
// method is idempotent, returning ErrLibraryClosed when called twice.
func (l *Library) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLibraryClosed
	}
	registry.SetDefault(l.prev)
	setLogger(l.prevLg)
	l.closed = true
	return nil
}

type observer struct {
	log logging.Logger
}

func (o *observer) Allocated(h registry.Handle, size int64) {
	o.log.Debug(context.Background(), "handle allocated",
		"handle", h.String(), "curve", h.Curve(), "bytes", size)
}

func (o *observer) Reclaimed(h registry.Handle) {
	o.log.Debug(context.Background(), "handle reclaimed", "handle", h.String())
}
