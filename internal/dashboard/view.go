package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/web3-frozen/whirlpool-monitor/internal/metrics"
	"github.com/web3-frozen/whirlpool-monitor/internal/position"
)

// DefaultInterval is the refresh cadence used when none is configured.
const DefaultInterval = 60 * time.Second

var (
	// ErrInactive is returned by Refresh when the view is not activated.
	ErrInactive = errors.New("view is not active")

	// ErrBusy is returned by Refresh when a fetch is already in flight.
	ErrBusy = errors.New("refresh already in progress")

	// ErrActive is returned by Activate on a view that is already running.
	ErrActive = errors.New("view is already active")
)

// Fetcher returns the current snapshot collection, ascending by timestamp.
type Fetcher interface {
	FetchSnapshots(ctx context.Context) ([]position.Snapshot, error)
}

// Status is the refresh state of a view.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) ticker { return timeTicker{time.NewTicker(d)} }

// View polls a Fetcher on a fixed interval and keeps the last good snapshot
// collection together with the selected position.
type View struct {
	name      string
	src       Fetcher
	interval  time.Duration
	logger    *slog.Logger
	newTicker func(time.Duration) ticker

	mu          sync.RWMutex
	status      Status
	snaps       []position.Snapshot
	errMsg      string
	selector    position.Selector
	refreshedAt time.Time
	// position whose value gauges are currently exported
	gaugePosition string

	inFlight atomic.Bool

	lifeMu sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewView creates an idle view. name labels its metrics and log lines.
func NewView(name string, src Fetcher, interval time.Duration, logger *slog.Logger) *View {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &View{
		name:      name,
		src:       src,
		interval:  interval,
		logger:    logger.With("view", name),
		newTicker: newTimeTicker,
		status:    StatusIdle,
		snaps:     []position.Snapshot{},
	}
}

// Interval returns the refresh cadence.
func (v *View) Interval() time.Duration { return v.interval }

// Activate starts the polling loop: one fetch right away, then one per
// interval until Deactivate or ctx is cancelled.
func (v *View) Activate(ctx context.Context) error {
	v.lifeMu.Lock()
	defer v.lifeMu.Unlock()
	if v.runningLocked() {
		return ErrActive
	}
	v.resetLocked()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	v.ctx, v.cancel, v.done = runCtx, cancel, done

	go v.run(runCtx, done)
	v.logger.Info("view activated", "interval", v.interval.String())
	return nil
}

// Deactivate stops the polling loop and waits for it to exit. No fetch is
// started and no state changes once Deactivate returns.
func (v *View) Deactivate() {
	v.lifeMu.Lock()
	defer v.lifeMu.Unlock()
	if v.cancel == nil {
		return
	}
	v.resetLocked()
	v.logger.Info("view deactivated")
}

// runningLocked reports whether the polling loop is still running. A loop
// whose parent context was cancelled has exited even though its fields are
// still set. lifeMu must be held.
func (v *View) runningLocked() bool {
	if v.cancel == nil {
		return false
	}
	select {
	case <-v.done:
		return false
	default:
		return true
	}
}

// resetLocked stops the loop if needed, waits for it and clears the
// lifecycle fields. lifeMu must be held.
func (v *View) resetLocked() {
	if v.cancel == nil {
		return
	}
	v.cancel()
	<-v.done
	v.ctx, v.cancel, v.done = nil, nil, nil

	v.mu.Lock()
	v.status = StatusIdle
	v.publishPosition("", nil)
	v.mu.Unlock()
}

// Active reports whether the polling loop is running.
func (v *View) Active() bool {
	v.lifeMu.Lock()
	defer v.lifeMu.Unlock()
	return v.runningLocked()
}

// Refresh runs one fetch cycle now. It returns ErrBusy if another fetch is
// in flight, and the fetch error if the cycle failed.
func (v *View) Refresh() error {
	v.lifeMu.Lock()
	ctx := v.ctx
	v.lifeMu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return ErrInactive
	}
	if err := v.refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return ErrInactive
		}
		return err
	}
	return nil
}

// Select changes the selected position.
func (v *View) Select(addr string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.selector.Select(addr); err != nil {
		return err
	}
	v.recordSelection()
	v.logger.Info("position selected", "position", addr)
	return nil
}

// Snapshots returns the held snapshot collection. Callers must not modify it.
func (v *View) Snapshots() []position.Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snaps
}

func (v *View) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		v.mu.Lock()
		v.status = StatusIdle
		v.mu.Unlock()
	}()

	// Initial fetch
	_ = v.refresh(ctx)

	t := v.newTicker(v.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			if ctx.Err() != nil {
				return
			}
			_ = v.refresh(ctx)
		}
	}
}

func (v *View) refresh(ctx context.Context) error {
	if !v.inFlight.CompareAndSwap(false, true) {
		metrics.RefreshSkippedTotal.WithLabelValues(v.name).Inc()
		v.logger.Debug("refresh skipped, fetch in flight")
		return ErrBusy
	}
	defer v.inFlight.Store(false)

	v.mu.Lock()
	if ctx.Err() != nil {
		v.mu.Unlock()
		return ctx.Err()
	}
	v.status = StatusLoading
	v.mu.Unlock()

	start := time.Now()
	snaps, err := v.src.FetchSnapshots(ctx)
	metrics.RefreshDuration.WithLabelValues(v.name).Observe(time.Since(start).Seconds())

	v.mu.Lock()
	defer v.mu.Unlock()

	// Torn down while fetching: leave state alone.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err != nil {
		v.status = StatusError
		v.errMsg = err.Error()
		metrics.RefreshTotal.WithLabelValues(v.name, "error").Inc()
		v.logger.Error("refresh failed", "error", err, "kept", len(v.snaps))
		return err
	}

	if snaps == nil {
		snaps = []position.Snapshot{}
	}
	v.snaps = snaps
	v.errMsg = ""
	v.status = StatusReady
	v.refreshedAt = time.Now()
	v.selector.Update(snaps)

	v.recordMetrics()
	v.logger.Info("refreshed",
		"snapshots", len(snaps),
		"positions", len(v.selector.Positions()),
		"selected", v.selector.Selected())
	return nil
}

// recordMetrics must be called with mu held.
func (v *View) recordMetrics() {
	metrics.RefreshTotal.WithLabelValues(v.name, "ok").Inc()
	metrics.RefreshLastSuccess.WithLabelValues(v.name).Set(float64(v.refreshedAt.Unix()))
	metrics.SnapshotCount.WithLabelValues(v.name).Set(float64(len(v.snaps)))
	metrics.TrackedPositions.WithLabelValues(v.name).Set(float64(len(v.selector.Positions())))

	if n := len(v.snaps); n > 0 {
		metrics.SnapshotAge.WithLabelValues(v.name).Set(time.Since(v.snaps[n-1].Timestamp).Seconds())
	}

	v.recordSelection()
}

// recordSelection exports the metrics of the selected position. mu must be
// held.
func (v *View) recordSelection() {
	selected := v.selector.Selected()
	if selected == "" {
		metrics.UnparsableRecords.WithLabelValues(v.name).Set(0)
		v.publishPosition("", nil)
		return
	}
	series := position.Derive(v.snaps, selected)
	metrics.UnparsableRecords.WithLabelValues(v.name).Set(float64(len(series.Skipped)))
	for _, s := range series.Skipped {
		v.logger.Warn("record excluded from series", "id", s.ID, "field", s.Field, "value", s.Value)
	}
	latest, ok := series.Latest()
	if !ok {
		v.publishPosition(selected, nil)
		return
	}
	v.publishPosition(selected, &latest)
}

// publishPosition sets the value gauges for addr and removes the series of
// any other position exported earlier. A nil latest removes addr's series
// as well. mu must be held.
func (v *View) publishPosition(addr string, latest *position.Point) {
	if prev := v.gaugePosition; prev != "" && (prev != addr || latest == nil) {
		metrics.LockedValue.DeleteLabelValues(prev)
		metrics.PendingYield.DeleteLabelValues(prev)
		v.gaugePosition = ""
	}
	if latest == nil {
		return
	}
	metrics.LockedValue.WithLabelValues(addr).Set(latest.LockedValue.InexactFloat64())
	metrics.PendingYield.WithLabelValues(addr).Set(latest.PendingYield.InexactFloat64())
	v.gaugePosition = addr
}
