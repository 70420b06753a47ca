package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSourceFetchSnapshots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":1,"timestamp":"2025-01-10T12:00:00Z","position_address":"pos1","whirlpool_price":"150.0",
			 "token_a_amount":"2.0","token_b_amount":"100.0","token_a_fees":"0.01","token_b_fees":"0.5"},
			{"id":2,"timestamp":"2025-01-10T12:01:00Z","position_address":"pos2","whirlpool_price":"151.0",
			 "token_a_amount":"1.0","token_b_amount":"90.0","token_a_fees":"0","token_b_fees":"0"}
		]`))
	}))
	defer srv.Close()

	h := &HTTPSource{client: srv.Client(), baseURL: srv.URL}
	snaps, err := h.FetchSnapshots(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshots error: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("len(snaps) = %d, want 2", len(snaps))
	}
	if snaps[0].WhirlpoolPrice != "150.0" || snaps[1].PositionAddress != "pos2" {
		t.Errorf("unexpected snapshots: %+v", snaps)
	}
}

func TestHTTPSourceEmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	h := &HTTPSource{client: srv.Client(), baseURL: srv.URL}
	snaps, err := h.FetchSnapshots(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshots error: %v", err)
	}
	if snaps == nil || len(snaps) != 0 {
		t.Errorf("snaps = %#v, want empty non-nil slice", snaps)
	}
}

func TestHTTPSourceErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"Database error","details":"boom"}`, ErrSourceUnavailable},
		{"bad gateway", http.StatusBadGateway, `oops`, ErrSourceUnavailable},
		{"object instead of array", http.StatusOK, `{"error":"nope"}`, ErrMalformedResponse},
		{"null", http.StatusOK, `null`, ErrMalformedResponse},
		{"truncated", http.StatusOK, `[{"id":1,`, ErrMalformedResponse},
		{"numeric field as number", http.StatusOK, `[{"id":1,"timestamp":"2025-01-10T12:00:00Z","position_address":"p","whirlpool_price":150}]`, ErrMalformedResponse},
		{"missing address", http.StatusOK, `[{"id":1,"timestamp":"2025-01-10T12:00:00Z"}]`, ErrMalformedResponse},
		{"missing timestamp", http.StatusOK, `[{"id":1,"position_address":"p"}]`, ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			h := &HTTPSource{client: srv.Client(), baseURL: srv.URL}
			_, err := h.FetchSnapshots(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPSourceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPSource(url).FetchSnapshots(context.Background())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
}
