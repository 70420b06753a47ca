package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/web3-frozen/whirlpool-monitor/internal/position"
)

const maxBodySize = 8 << 20

// HTTPSource reads records from the /api/whirlpool endpoint of a running
// monitor server.
type HTTPSource struct {
	client  *http.Client
	baseURL string
}

func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: url,
	}
}

// FetchSnapshots fetches the current record page.
func (h *HTTPSource) FetchSnapshots(ctx context.Context) ([]position.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrSourceUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		_ = json.Unmarshal(body, &errResp)
		msg := errResp.Error
		if errResp.Details != "" {
			msg += ": " + errResp.Details
		}
		return nil, fmt.Errorf("%w: status %d %s", ErrSourceUnavailable, resp.StatusCode, msg)
	}

	return decodeSnapshots(body)
}

func decodeSnapshots(body []byte) ([]position.Snapshot, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedResponse)
	}

	var snaps []position.Snapshot
	if err := json.Unmarshal(trimmed, &snaps); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	for i, s := range snaps {
		if s.PositionAddress == "" {
			return nil, fmt.Errorf("%w: record %d has no position_address", ErrMalformedResponse, i)
		}
		if s.Timestamp.IsZero() {
			return nil, fmt.Errorf("%w: record %d has no timestamp", ErrMalformedResponse, i)
		}
	}
	if snaps == nil {
		snaps = []position.Snapshot{}
	}
	return snaps, nil
}
