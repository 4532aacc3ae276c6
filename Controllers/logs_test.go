package Controllers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"AgriDealer/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, entries ...middleware.LogData) string {
	t.Helper()
	var lines []string
	for _, e := range entries {
		line, err := json.Marshal(e)
		require.NoError(t, err)
		lines = append(lines, string(line))
	}
	lines = append(lines, "not json")
	path := filepath.Join(t.TempDir(), "requests.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func TestReadRequestLog(t *testing.T) {
	day := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	path := writeLog(t,
		middleware.LogData{Timestamp: day.Add(-time.Minute), Method: "GET", Path: "/api/farmers/", Status: 200},
		middleware.LogData{Timestamp: day.Add(time.Hour), Method: "GET", Path: "/api/farmers/", Status: 200},
		middleware.LogData{Timestamp: day.Add(24 * time.Hour), Method: "GET", Path: "/api/farmers/", Status: 200},
	)

	entries, err := readRequestLog(path, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, day.Add(time.Hour), entries[0].Timestamp.UTC())

	entries, err = readRequestLog(filepath.Join(t.TempDir(), "missing.log"), day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSummarizeLogs(t *testing.T) {
	stats := summarizeLogs([]middleware.LogData{
		{Method: "GET", Path: "/api/farmers/", Status: 200, Latency: 2 * time.Millisecond, Username: "Ravi"},
		{Method: "GET", Path: "/api/farmers/", Status: 200, Latency: 4 * time.Millisecond, Username: "Ravi"},
		{Method: "POST", Path: "/api/farmers/", Status: 422, Latency: time.Millisecond, Username: "Counter"},
		{Method: "GET", Path: "/api/farmers/", Status: 500, Latency: 6 * time.Millisecond},
	})

	assert.Equal(t, 4, stats.TotalRequests)
	assert.Equal(t, 2, stats.ErrorRequests)
	assert.Equal(t, map[int]int{200: 2, 422: 1, 500: 1}, stats.StatusStats)
	assert.Equal(t, map[string]int{"Ravi": 2, "Counter": 1}, stats.Users)

	require.Len(t, stats.TopPaths, 2)
	top := stats.TopPaths[0]
	assert.Equal(t, "GET", top.Method)
	assert.Equal(t, 3, top.Count)
	assert.InDelta(t, 4.0, top.AvgLatency, 0.001)
	assert.InDelta(t, 6.0, top.MaxLatency, 0.001)
	assert.InDelta(t, 66.67, top.SuccessRate, 0.01)
}
