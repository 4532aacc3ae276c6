package Controllers

import (
	"bufio"
	"encoding/json"
	"errors"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"AgriDealer/Constants"
	"AgriDealer/middleware"

	"github.com/gofiber/fiber/v2"
)

// PathStats summarises the requests made to one route
type PathStats struct {
	Method      string  `json:"method"`
	Path        string  `json:"path"`
	Count       int     `json:"count"`
	AvgLatency  float64 `json:"avg_latency_ms"`
	MaxLatency  float64 `json:"max_latency_ms"`
	SuccessRate float64 `json:"success_rate"`
}

// LogStats is the request activity of one dealer's accounts over a date range
type LogStats struct {
	DateFrom      time.Time      `json:"date_from"`
	DateTo        time.Time      `json:"date_to"`
	TotalRequests int            `json:"total_requests"`
	ErrorRequests int            `json:"error_requests"`
	StatusStats   map[int]int    `json:"status_stats"`
	Users         map[string]int `json:"users"`
	TopPaths      []PathStats    `json:"top_paths"`
}

type LogsController struct {
	// LogFile defaults to the configured request log
	LogFile string
}

func NewLogsController() *LogsController {
	return &LogsController{LogFile: Constants.RequestLogFile}
}

// GetLogStats reports request activity for the caller's dealer. date_from and date_to
// default to today.
func (c *LogsController) GetLogStats(ctx *fiber.Ctx) error {
	now := time.Now()
	dateFrom := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dateTo := dateFrom.AddDate(0, 0, 1)

	if raw := ctx.Query("date_from"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, now.Location())
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date_from format. Use YYYY-MM-DD"})
		}
		dateFrom = parsed
	}
	if raw := ctx.Query("date_to"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, now.Location())
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date_to format. Use YYYY-MM-DD"})
		}
		dateTo = parsed.AddDate(0, 0, 1)
	}

	entries, err := readRequestLog(c.LogFile, dateFrom, dateTo)
	if err != nil {
		log.Printf("Error reading request log: %v\n", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read logs"})
	}

	dealerID := currentUser(ctx).Dealer()
	var own []middleware.LogData
	for _, entry := range entries {
		if entry.DealerID == dealerID {
			own = append(own, entry)
		}
	}

	stats := summarizeLogs(own)
	stats.DateFrom = dateFrom
	stats.DateTo = dateTo
	return ctx.JSON(stats)
}

// readRequestLog reads JSON lines in [from, to). A missing file reads as empty.
func readRequestLog(path string, from, to time.Time) ([]middleware.LogData, error) {
	if path == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []middleware.LogData
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry middleware.LogData
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.Timestamp.Before(from) || !entry.Timestamp.Before(to) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

func summarizeLogs(entries []middleware.LogData) LogStats {
	stats := LogStats{
		StatusStats: map[int]int{},
		Users:       map[string]int{},
		TopPaths:    []PathStats{},
	}
	groups := map[string]*PathStats{}
	successes := map[string]int{}
	totalLatency := map[string]float64{}

	for _, entry := range entries {
		stats.TotalRequests++
		if entry.Status >= 400 {
			stats.ErrorRequests++
		}
		stats.StatusStats[entry.Status]++
		if entry.Username != "" {
			stats.Users[entry.Username]++
		}

		key := entry.Method + " " + entry.Path
		group, ok := groups[key]
		if !ok {
			group = &PathStats{Method: entry.Method, Path: entry.Path}
			groups[key] = group
		}
		latencyMs := float64(entry.Latency.Microseconds()) / 1000.0
		group.Count++
		totalLatency[key] += latencyMs
		if latencyMs > group.MaxLatency {
			group.MaxLatency = latencyMs
		}
		if entry.Status >= 200 && entry.Status < 300 {
			successes[key]++
		}
	}

	for key, group := range groups {
		group.AvgLatency = totalLatency[key] / float64(group.Count)
		group.SuccessRate = float64(successes[key]) / float64(group.Count) * 100
		stats.TopPaths = append(stats.TopPaths, *group)
	}
	sort.Slice(stats.TopPaths, func(i, j int) bool {
		if stats.TopPaths[i].Count != stats.TopPaths[j].Count {
			return stats.TopPaths[i].Count > stats.TopPaths[j].Count
		}
		return stats.TopPaths[i].Path+stats.TopPaths[i].Method < stats.TopPaths[j].Path+stats.TopPaths[j].Method
	})
	if len(stats.TopPaths) > 10 {
		stats.TopPaths = stats.TopPaths[:10]
	}
	return stats
}
