package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cybermap/core/threats"
	"cybermap/core/utils"
)

const threatsPath = "/api/threats/getAllThreats"

// threatsResponse mirrors the upstream feed payload. Some deployments nest
// the records under "data" instead of "threats"; both are accepted.
type threatsResponse struct {
	Threats     []threats.Record `json:"threats"`
	Data        []threats.Record `json:"data"`
	Total       int              `json:"total"`
	LastUpdated string           `json:"lastUpdated"`
}

type HTTPSource struct {
	baseURL string
	client  *http.Client
	logger  *utils.Logger
}

func NewHTTPSource(baseURL string, timeout time.Duration, logger *utils.Logger) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (s *HTTPSource) Name() string { return OriginHTTP }

func (s *HTTPSource) Fetch(ctx context.Context) ([]threats.Incident, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+threatsPath, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("feed: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("feed: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("feed: fetch: unexpected status %d", resp.StatusCode)
	}
	var payload threatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, 0, fmt.Errorf("feed: decode payload: %w", err)
	}
	records := payload.Threats
	if len(records) == 0 {
		records = payload.Data
	}
	incidents, rejected, reasons := threats.ParseBatch(records)
	for _, reason := range reasons {
		s.logger.Printf("feed: record dropped: %v", reason)
	}
	return incidents, rejected, nil
}
