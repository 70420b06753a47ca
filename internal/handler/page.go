package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/web3-frozen/whirlpool-monitor/internal/dashboard"
	"github.com/web3-frozen/whirlpool-monitor/internal/position"
	"github.com/web3-frozen/whirlpool-monitor/internal/render"
)

// Page serves the HTML dashboard. A ?position= query shows that position for
// this request only; the shared selection changes through SelectPosition.
func Page(view *dashboard.View, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := view.State()
		var notice string
		if addr := r.URL.Query().Get("position"); addr != "" {
			picked, err := view.StateFor(addr)
			switch {
			case errors.Is(err, position.ErrUnknownPosition):
				notice = "Unknown position " + addr + "; showing the current selection."
			case err == nil:
				st = picked
			}
		}

		var buf bytes.Buffer
		if err := render.Page(&buf, st, notice, view.Interval()); err != nil {
			logger.Error("render dashboard page failed", "error", err)
			http.Error(w, "failed to render page", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	}
}
