package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/web3-frozen/whirlpool-monitor/internal/dashboard"
	"github.com/web3-frozen/whirlpool-monitor/internal/position"
)

func Dashboard(view *dashboard.View) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, view.State())
	}
}

func SelectPosition(view *dashboard.View) http.HandlerFunc {
	type request struct {
		PositionAddress string `json:"position_address"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.PositionAddress == "" {
			http.Error(w, `{"error":"position_address required"}`, http.StatusBadRequest)
			return
		}

		if err := view.Select(req.PositionAddress); err != nil {
			if errors.Is(err, position.ErrUnknownPosition) {
				http.Error(w, `{"error":"unknown position"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"failed to select position"}`, http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, view.State())
	}
}

// RefreshDashboard runs a fetch cycle now and returns the resulting state.
// A failed fetch still answers 200: the error is part of the state.
func RefreshDashboard(view *dashboard.View) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		err := view.Refresh()
		switch {
		case errors.Is(err, dashboard.ErrBusy):
			http.Error(w, `{"error":"refresh already in progress"}`, http.StatusConflict)
			return
		case errors.Is(err, dashboard.ErrInactive):
			http.Error(w, `{"error":"dashboard is not running"}`, http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, view.State())
	}
}
