package concurrency

import (
	"sync"
	"sync/atomic"
	"time"

	"dev.helix.gds/internal/errs"
)

// TerminationMonitor is the external collaborator a wrapping TerminationFlag
// polls. Hosts plug in whatever signals "stop" for them (a context, a health
// check, an operator flag); the core only needs IsTerminated().
type TerminationMonitor interface {
	IsTerminated() bool
}

// TerminationMonitorFunc adapts a plain func to a TerminationMonitor.
type TerminationMonitorFunc func() bool

// IsTerminated implements TerminationMonitor.
func (f TerminationMonitorFunc) IsTerminated() bool { return f() }

// TerminationFlag is the cooperative cancellation signal polled at
// well-defined suspension points throughout the pool, the driver, and the
// parallel utilities.
type TerminationFlag interface {
	// Running reports whether execution should continue.
	Running() bool
	// AssertRunning raises a *errs.TerminatedError if Running() is false.
	AssertRunning() error
}

type staticFlag struct {
	running bool
}

func (f staticFlag) Running() bool        { return f.running }
func (f staticFlag) AssertRunning() error {
	if f.running {
		return nil
	}
	return &errs.TerminatedError{}
}

// RunningTrue is the canonical always-running flag.
var RunningTrue TerminationFlag = staticFlag{running: true}

// StopRunning is the canonical always-terminated flag.
var StopRunning TerminationFlag = staticFlag{running: false}

// DefaultPollInterval is the throttling window a monitor-backed flag
// re-polls its underlying monitor at, per spec.md §4.1.
const DefaultPollInterval = 10 * time.Second

// monitorFlag wraps a TerminationMonitor, caching its last observed state
// and re-polling only when more than pollInterval has elapsed since the
// last poll. Once termination is observed, it is sticky: further Running()
// calls return false without polling (spec's "ordering guarantees" require
// termination-flag polling to be monotonic).
type monitorFlag struct {
	monitor      TerminationMonitor
	pollInterval time.Duration
	causeFn      func() error

	mu            sync.Mutex
	lastCheck     time.Time
	cachedRunning bool
	observedStop  atomic.Bool
}

// NewMonitorFlag wraps monitor with the default 10s poll interval.
func NewMonitorFlag(monitor TerminationMonitor) TerminationFlag {
	return NewMonitorFlagWithInterval(monitor, DefaultPollInterval, nil)
}

// NewMonitorFlagWithInterval wraps monitor with a custom poll interval and
// an optional cause supplier invoked when AssertRunning raises its error.
func NewMonitorFlagWithInterval(monitor TerminationMonitor, pollInterval time.Duration, causeFn func() error) TerminationFlag {
	return &monitorFlag{
		monitor:       monitor,
		pollInterval:  pollInterval,
		causeFn:       causeFn,
		cachedRunning: true,
	}
}

func (f *monitorFlag) Running() bool {
	if f.observedStop.Load() {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	if now.Sub(f.lastCheck) <= f.pollInterval && f.lastCheck != (time.Time{}) {
		return f.cachedRunning
	}
	f.lastCheck = now
	f.cachedRunning = !f.monitor.IsTerminated()
	if !f.cachedRunning {
		f.observedStop.Store(true)
	}
	return f.cachedRunning
}

func (f *monitorFlag) AssertRunning() error {
	if f.Running() {
		return nil
	}
	if f.causeFn != nil {
		return &errs.TerminatedError{Cause: f.causeFn()}
	}
	return &errs.TerminatedError{}
}

// AssertRunning is a free function convenience for callers holding a
// TerminationFlag interface value that might be nil; a nil flag always
// reports running (mirrors the teacher's nil-safe defaults elsewhere).
func AssertRunning(flag TerminationFlag) error {
	if flag == nil {
		return nil
	}
	return flag.AssertRunning()
}

// IsRunning is the nil-safe counterpart to AssertRunning.
func IsRunning(flag TerminationFlag) bool {
	if flag == nil {
		return true
	}
	return flag.Running()
}
