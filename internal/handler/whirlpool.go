package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/web3-frozen/whirlpool-monitor/internal/position"
)

// SnapshotFetcher returns the current record page.
type SnapshotFetcher interface {
	FetchSnapshots(ctx context.Context) ([]position.Snapshot, error)
}

// Records serves the most recent position records as a JSON array,
// ascending by timestamp. A failed read never produces a partial array.
func Records(src SnapshotFetcher, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snaps, err := src.FetchSnapshots(r.Context())
		if err != nil {
			logger.Error("fetch position records failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Database error",
				"details": err.Error(),
			})
			return
		}
		if snaps == nil {
			snaps = []position.Snapshot{}
		}
		writeJSON(w, http.StatusOK, snaps)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
