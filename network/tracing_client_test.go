package network_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dietfit/meal-mapping-services/matching"
	"github.com/dietfit/meal-mapping-services/network"
	"github.com/dietfit/meal-mapping-services/util/logger"
	"github.com/dietfit/meal-mapping-services/util/testutil"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger, _ = logger.InitLogger("/tmp", logging.ERROR)

func apiTraceJSON(id, userID string, minutes int) map[string]interface{} {
	return map[string]interface{}{
		"id":        id,
		"name":      "meal-analysis",
		"userId":    userID,
		"timestamp": testutil.At(minutes).UTC().Format(time.RFC3339),
		"sessionId": "session-" + id,
		"model":     "gpt-4o-mini",
		"input":     "analyze this meal",
		"output":    "rice, egg, vegetables",
		"totalCost": 0.0042,
	}
}

func pageHandler(t *testing.T, pages [][]map[string]interface{}, totalItems int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "pk-test", username)
		assert.Equal(t, "sk-test", password)
		assert.NotEmpty(t, r.URL.Query().Get("fromTimestamp"))
		assert.NotEmpty(t, r.URL.Query().Get("toTimestamp"))

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		require.NoError(t, err)
		data := []map[string]interface{}{}
		if page >= 1 && page <= len(pages) {
			data = pages[page-1]
		}
		body := map[string]interface{}{
			"data": data,
			"meta": map[string]interface{}{
				"page":       page,
				"limit":      2,
				"totalItems": totalItems,
				"totalPages": len(pages),
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}
}

func newClient(t *testing.T, hostURL string, pageSize int) *network.TracingClient {
	client, err := network.NewTracingClient(hostURL, "v1", "pk-test", "sk-test",
		pageSize, matching.NewNormalizer(7), testLogger)
	require.NoError(t, err)
	return client
}

func TestNewTracingClientRequiresHost(t *testing.T) {
	_, err := network.NewTracingClient("", "v1", "pk", "sk", 50,
		matching.NewNormalizer(7), testLogger)
	assert.Error(t, err)
}

func TestTracingClientBuildURL(t *testing.T) {
	client := newClient(t, "https://traces.example.com", 50)
	assert.Equal(t, "https://traces.example.com/api/public/v1/traces",
		client.BuildURL("/api/public/v1/traces"))
}

func TestTraceList(t *testing.T) {
	pages := [][]map[string]interface{}{
		{apiTraceJSON("tr-1", "user-1", 0), apiTraceJSON("tr-2", "user-2", 5)},
	}
	server := httptest.NewServer(pageHandler(t, pages, 2))
	defer server.Close()

	client := newClient(t, server.URL, 2)
	resp := client.TraceList(testutil.At(-60), testutil.At(60), 1)
	require.NoError(t, resp.Error)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 2, resp.TotalItems)

	traces := resp.Traces()
	require.Equal(t, 2, len(traces))
	assert.Equal(t, "tr-1", traces[0].ID)
	assert.Equal(t, "user-1", traces[0].UserID)
	assert.True(t, traces[0].Timestamp.Equal(testutil.At(0)))
	assert.Equal(t, "UTC+7", traces[0].Timestamp.Location().String())
	assert.InDelta(t, 0.0042, traces[0].Cost, 0.000001)
}

func TestTracesInWindowWalksPagesAndDeduplicates(t *testing.T) {
	// tr-2 repeats on the page boundary, as the backend does when new
	// traces arrive mid-pagination. It must appear once in the result.
	pages := [][]map[string]interface{}{
		{apiTraceJSON("tr-1", "user-1", 0), apiTraceJSON("tr-2", "user-1", 5)},
		{apiTraceJSON("tr-2", "user-1", 5), apiTraceJSON("tr-3", "user-2", 10)},
		{apiTraceJSON("tr-4", "user-2", 15)},
	}
	server := httptest.NewServer(pageHandler(t, pages, 5))
	defer server.Close()

	client := newClient(t, server.URL, 2)
	traces, invalid, err := client.TracesInWindow(testutil.At(-60), testutil.At(60))
	require.NoError(t, err)
	require.Equal(t, 4, len(traces))
	assert.Equal(t, 0, invalid)
	ids := make([]string, len(traces))
	for i, trace := range traces {
		ids[i] = trace.ID
	}
	assert.Equal(t, []string{"tr-1", "tr-2", "tr-3", "tr-4"}, ids)
}

func TestTracesInWindowFullPageWithBadTimestamp(t *testing.T) {
	// Page 1 is full at the wire level, but one of its traces has an
	// unparseable timestamp and gets dropped. The walk must still
	// continue to page 2; only the bad trace is excluded.
	bad := apiTraceJSON("tr-2", "user-1", 5)
	bad["timestamp"] = "not-a-timestamp"
	pages := [][]map[string]interface{}{
		{apiTraceJSON("tr-1", "user-1", 0), bad},
		{apiTraceJSON("tr-3", "user-2", 10)},
	}
	server := httptest.NewServer(pageHandler(t, pages, 3))
	defer server.Close()

	client := newClient(t, server.URL, 2)
	traces, invalid, err := client.TracesInWindow(testutil.At(-60), testutil.At(60))
	require.NoError(t, err)
	require.Equal(t, 2, len(traces))
	assert.Equal(t, "tr-1", traces[0].ID)
	assert.Equal(t, "tr-3", traces[1].ID)
	assert.Equal(t, 1, invalid)
}

func TestTracesInWindowFullPageAllBadTimestamps(t *testing.T) {
	badA := apiTraceJSON("tr-1", "user-1", 0)
	badA["timestamp"] = "garbage"
	badB := apiTraceJSON("tr-2", "user-1", 5)
	badB["timestamp"] = ""
	pages := [][]map[string]interface{}{
		{badA, badB},
		{apiTraceJSON("tr-3", "user-2", 10)},
	}
	server := httptest.NewServer(pageHandler(t, pages, 3))
	defer server.Close()

	client := newClient(t, server.URL, 2)
	traces, invalid, err := client.TracesInWindow(testutil.At(-60), testutil.At(60))
	require.NoError(t, err)
	require.Equal(t, 1, len(traces))
	assert.Equal(t, "tr-3", traces[0].ID)
	assert.Equal(t, 2, invalid)
}

func TestTracesInWindowEmpty(t *testing.T) {
	server := httptest.NewServer(pageHandler(t, nil, 0))
	defer server.Close()

	client := newClient(t, server.URL, 2)
	traces, invalid, err := client.TracesInWindow(testutil.At(-60), testutil.At(60))
	require.NoError(t, err)
	assert.Empty(t, traces)
	assert.Equal(t, 0, invalid)
}

func TestTraceListServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newClient(t, server.URL, 2)
	resp := client.TraceList(testutil.At(-60), testutil.At(60), 1)
	require.Error(t, resp.Error)
	assert.Contains(t, resp.Error.Error(), fmt.Sprintf("status %d", http.StatusUnauthorized))

	_, _, err := client.TracesInWindow(testutil.At(-60), testutil.At(60))
	assert.Error(t, err)
}
