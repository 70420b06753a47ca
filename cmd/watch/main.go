package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/web3-frozen/whirlpool-monitor/internal/config"
	"github.com/web3-frozen/whirlpool-monitor/internal/dashboard"
	"github.com/web3-frozen/whirlpool-monitor/internal/source"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src := source.NewHTTPSource(cfg.SourceURL)
	view := dashboard.NewView("watch", src, cfg.RefreshInterval, logger)
	if err := view.Activate(ctx); err != nil {
		logger.Error("failed to start view", "error", err)
		os.Exit(1)
	}
	defer view.Deactivate()
	logger.Info("watching", "source", cfg.SourceURL, "interval", view.Interval().String())

	want := cfg.WatchPosition
	var lastSeen time.Time
	var lastErr string

	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher stopped")
			return
		case <-t.C:
		}

		st := view.State()
		if st.Error != nil && *st.Error != lastErr {
			lastErr = *st.Error
			logger.Error("source fetch failed", "error", lastErr, "state", st.Status)
		}
		if st.RefreshedAt == nil || !st.RefreshedAt.After(lastSeen) {
			continue
		}
		lastSeen = *st.RefreshedAt
		lastErr = ""

		// Apply the requested position once it shows up in the data.
		if want != "" && (st.Selected == nil || *st.Selected != want) {
			if err := view.Select(want); err == nil {
				st = view.State()
			}
		}
		logLatest(logger, st)
	}
}

func logLatest(logger *slog.Logger, st dashboard.State) {
	if st.NoData || st.Selected == nil {
		logger.Info("no position data")
		return
	}
	if len(st.Skipped) > 0 {
		logger.Warn("records excluded from series", "count", len(st.Skipped))
	}
	if st.Latest == nil {
		logger.Info("selected position has no parsable records", "position", *st.Selected)
		return
	}
	p := st.Latest
	logger.Info("latest position statistics",
		"position", *st.Selected,
		"positions", len(st.Positions),
		"points", len(st.Series),
		"timestamp", p.Timestamp,
		"price", p.WhirlpoolPrice.String(),
		"token_a", p.TokenAAmount.String(),
		"token_b", p.TokenBAmount.String(),
		"fees_a", p.TokenAFees.String(),
		"fees_b", p.TokenBFees.String(),
		"locked_value", p.LockedValue.String(),
		"pending_yield", p.PendingYield.String(),
	)
}
