package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybermap/api/handlers"
	"cybermap/config"
	"cybermap/core/dashboard"
	"cybermap/core/feed"
	"cybermap/core/mapview"
	"cybermap/core/metrics"
	"cybermap/core/threats"
	"cybermap/core/utils"
)

type testEnv struct {
	srv     *httptest.Server
	service *dashboard.Service
	syncer  *mapview.Synchronizer
	stream  *handlers.MapStream
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := utils.NewLogger()
	m := metrics.NewMetricsWith(prometheus.NewRegistry())
	stream := handlers.NewMapStream(16, logger)
	syncer := mapview.NewSynchronizer(stream, nil, m, logger)
	svc := dashboard.NewService(syncer, 16, logger)
	syncer.SetOnSelect(func(id string) { _ = svc.Select(id) })
	syncer.Init()

	server := NewServer(&config.AppConfig{}, ServerDeps{
		Dashboard: svc,
		Sync:      syncer,
		Stream:    stream,
	}, logger)
	srv := httptest.NewServer(server.Router())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, service: svc, syncer: syncer, stream: stream}
}

func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	now := time.Now().UTC()
	e.service.ApplySnapshot(feed.Snapshot{
		Incidents: []threats.Incident{
			apiIncident("inc-1", "USA", threats.SeverityCritical, threats.AttackMalware, now.Add(-time.Hour)),
			apiIncident("inc-2", "UK", threats.SeverityLow, threats.AttackPhishing, now.Add(-2*time.Hour)),
			apiIncident("inc-3", "USA", threats.SeverityHigh, threats.AttackDDoS, now.Add(-3*time.Hour)),
		},
		Total:      3,
		FetchedAt:  now,
		Origin:     feed.OriginHTTP,
		Generation: 1,
	})
}

func apiIncident(id, country string, sev threats.Severity, atk threats.AttackType, ts time.Time) threats.Incident {
	return threats.Incident{
		ID:          id,
		Title:       "Incident " + id,
		Description: "description " + id,
		Severity:    sev,
		AttackType:  atk,
		Location:    threats.Location{Lat: 40.7, Lng: -74, Country: country, City: "City"},
		Timestamp:   ts,
		Source:      "test",
	}
}

func (e *testEnv) getJSON(t *testing.T, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(e.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestThreatsList(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	var body struct {
		Threats []threats.Incident `json:"threats"`
		Count   int                `json:"count"`
		Total   int                `json:"total"`
		Origin  string             `json:"origin"`
	}
	resp := env.getJSON(t, "/api/threats", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, feed.OriginHTTP, body.Origin)
	require.Len(t, body.Threats, 3)
	assert.Equal(t, "inc-1", body.Threats[0].ID)
}

func TestThreatsGet(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	var in threats.Incident
	resp := env.getJSON(t, "/api/threats/inc-2", &in)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "inc-2", in.ID)
	assert.Equal(t, threats.SeverityLow, in.Severity)

	resp = env.getJSON(t, "/api/threats/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFilterRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	resp := env.do(t, http.MethodPut, "/api/filter", map[string]string{"severity": "critical"})
	var updated struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &updated)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, updated.Count)

	var criteria struct {
		Severity   string `json:"severity"`
		AttackType string `json:"attackType"`
	}
	env.getJSON(t, "/api/filter", &criteria)
	assert.Equal(t, "critical", criteria.Severity)
	assert.Equal(t, "all", criteria.AttackType)

	var list struct {
		Threats []threats.Incident `json:"threats"`
	}
	env.getJSON(t, "/api/threats", &list)
	require.Len(t, list.Threats, 1)
	assert.Equal(t, "inc-1", list.Threats[0].ID)
}

func TestFilterRejectsInvalidCriteria(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	resp := env.do(t, http.MethodPut, "/api/filter", map[string]string{"severity": "apocalyptic"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPut, "/api/filter", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSelectionEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	resp := env.do(t, http.MethodPost, "/api/threats/inc-1/select", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var sel struct {
		Selected *threats.Incident `json:"selected"`
	}
	env.getJSON(t, "/api/selected", &sel)
	require.NotNil(t, sel.Selected)
	assert.Equal(t, "inc-1", sel.Selected.ID)

	resp = env.do(t, http.MethodDelete, "/api/selected", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	sel.Selected = nil
	env.getJSON(t, "/api/selected", &sel)
	assert.Nil(t, sel.Selected)

	resp = env.do(t, http.MethodPost, "/api/threats/ghost/select", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatsEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	var countries struct {
		Buckets []struct {
			Key   string `json:"key"`
			Count int    `json:"count"`
		} `json:"buckets"`
		Total int `json:"total"`
	}
	env.getJSON(t, "/api/stats/countries", &countries)
	require.Len(t, countries.Buckets, 2)
	assert.Equal(t, "USA", countries.Buckets[0].Key)
	assert.Equal(t, 2, countries.Buckets[0].Count)
	assert.Equal(t, 3, countries.Total)

	var severity struct {
		Entries []struct {
			Severity string `json:"severity"`
			Count    int    `json:"count"`
		} `json:"entries"`
		CriticalCount int `json:"criticalCount"`
	}
	env.getJSON(t, "/api/stats/severity", &severity)
	require.Len(t, severity.Entries, 4)
	assert.Equal(t, "critical", severity.Entries[0].Severity)
	assert.Equal(t, 1, severity.CriticalCount)

	var attackTypes struct {
		DistinctTypes int `json:"distinctTypes"`
	}
	env.getJSON(t, "/api/stats/attack-types", &attackTypes)
	assert.Equal(t, 3, attackTypes.DistinctTypes)

	var timeline struct {
		Hourly  []struct{ Hour, Count int } `json:"hourly"`
		Last24h int                         `json:"last24h"`
	}
	env.getJSON(t, "/api/stats/timeline", &timeline)
	require.Len(t, timeline.Hourly, 24)
	assert.Equal(t, 3, timeline.Last24h)

	var summary struct {
		SeverityCounts map[string]int `json:"severityCounts"`
		Total          int            `json:"total"`
	}
	env.getJSON(t, "/api/stats/summary", &summary)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.SeverityCounts["critical"])
	assert.Equal(t, 1, summary.SeverityCounts["high"])
	assert.Equal(t, 1, summary.SeverityCounts["low"])
}

func TestMapLifecycleEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	require.Equal(t, mapview.StateInitializing, env.syncer.State())

	resp := env.do(t, http.MethodPost, "/api/map/ready", nil)
	var state struct {
		State string `json:"state"`
	}
	decodeBody(t, resp, &state)
	assert.Equal(t, "ready", state.State)

	resp = env.do(t, http.MethodPost, "/api/map/error", map[string]string{"message": "tiles unavailable"})
	decodeBody(t, resp, &state)
	assert.Equal(t, "error", state.State)

	var mapState struct {
		State   string `json:"state"`
		Error   string `json:"error"`
		Markers int    `json:"markers"`
		Clients int    `json:"clients"`
	}
	env.getJSON(t, "/api/map/state", &mapState)
	assert.Equal(t, "error", mapState.State)
	assert.Equal(t, "tiles unavailable", mapState.Error)

	resp = env.do(t, http.MethodPost, "/api/map/retry", nil)
	decodeBody(t, resp, &state)
	assert.Equal(t, "initializing", state.State)

	resp = env.do(t, http.MethodPost, "/api/map/ready", nil)
	decodeBody(t, resp, &state)
	assert.Equal(t, "ready", state.State)

	env.getJSON(t, "/api/map/state", &mapState)
	assert.Equal(t, "ready", mapState.State)
	assert.Equal(t, 3, mapState.Markers, "pending filtered set lands after retry+ready")
}

func TestMapStreamDeliversMarkerEvents(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/map/ready", nil).Body.Close()

	resp, err := http.Get(env.srv.URL + "/api/map/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// Wait for the subscription to register before triggering a rebuild.
	deadline := time.Now().Add(2 * time.Second)
	for env.stream.ClientCount() == 0 {
		require.True(t, time.Now().Before(deadline), "stream client never registered")
		time.Sleep(time.Millisecond)
	}
	env.seed(t)

	reader := bufio.NewReader(resp.Body)
	var ops []string
	for len(ops) < 4 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev struct {
			Op     string `json:"op"`
			Marker *struct {
				ID    string `json:"id"`
				Color string `json:"color"`
			} `json:"marker"`
		}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		ops = append(ops, ev.Op)
		if ev.Op == "place" && ev.Marker.ID == "inc-1" {
			assert.Equal(t, "#dc2626", ev.Marker.Color)
		}
	}
	assert.Equal(t, []string{"clear", "place", "place", "place"}, ops)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	var health map[string]string
	resp := env.getJSON(t, "/healthz", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health["status"])

	var ready map[string]string
	env.getJSON(t, "/readyz", &ready)
	assert.Equal(t, "ok", ready["status"])
	assert.Equal(t, "initializing", ready["map"])
}

func TestMetricsEndpointExposed(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRouteIs404(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.srv.URL + fmt.Sprintf("/api/%s", "nonsense"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
