package agreements

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrNotLoaded is returned while the table is still loading.
var ErrNotLoaded = errors.New("agreements table is not loaded yet")

type LoadState int

const (
	StateLoading LoadState = iota
	StateLoaded
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the loader. Table is set only when State is StateLoaded.
type Status struct {
	State LoadState
	Table *Table
	Err   error
}

func Loading() Status { return Status{State: StateLoading} }

// Loaded reports a loaded table. A nil table is treated as an empty one.
func Loaded(t *Table) Status {
	if t == nil {
		t = NewTable(nil)
	}
	return Status{State: StateLoaded, Table: t}
}

func Failed(err error) Status { return Status{State: StateFailed, Err: err} }

// Loader loads the table once and exposes its state to concurrent readers.
type Loader struct {
	mu     sync.RWMutex
	status Status
	logger *zap.Logger
	done   chan struct{}
	once   sync.Once
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		status: Loading(),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// LoadFile loads path and records the outcome. Only the first call has effect.
func (l *Loader) LoadFile(ctx context.Context, path string) Status {
	l.once.Do(func() {
		var status Status
		if err := ctx.Err(); err != nil {
			status = Failed(fmt.Errorf("loading agreements: %w", err))
		} else if t, err := LoadFile(path); err != nil {
			status = Failed(err)
		} else {
			status = Loaded(t)
		}
		l.set(status)
	})

	return l.Status()
}

// Set records an externally produced table or failure. Only the first
// LoadFile or Set call has effect.
func (l *Loader) Set(status Status) {
	l.once.Do(func() { l.set(status) })
}

func (l *Loader) set(status Status) {
	l.mu.Lock()
	l.status = status
	l.mu.Unlock()
	close(l.done)

	switch status.State {
	case StateLoaded:
		l.logger.Info("agreements table loaded",
			zap.String("source", status.Table.Source),
			zap.Int("rows", status.Table.Len()),
			zap.Int("skipped", status.Table.Skipped),
			zap.Int("incomplete", status.Table.Incomplete()),
		)
	case StateFailed:
		l.logger.Warn("agreements table failed to load", zap.Error(status.Err))
	}
}

func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Wait blocks until the table is loaded or failed, or ctx is done.
func (l *Loader) Wait(ctx context.Context) (Status, error) {
	select {
	case <-ctx.Done():
		return l.Status(), ctx.Err()
	case <-l.done:
		return l.Status(), nil
	}
}

// Table returns the loaded table, ErrNotLoaded while loading, or the load error.
func (l *Loader) Table() (*Table, error) {
	status := l.Status()
	switch status.State {
	case StateLoaded:
		return status.Table, nil
	case StateFailed:
		return nil, status.Err
	default:
		return nil, ErrNotLoaded
	}
}
