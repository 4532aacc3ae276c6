package middleware

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"AgriDealer/Constants"
	"AgriDealer/Models"

	"github.com/gofiber/fiber/v2"
)

// LogConfig holds configuration for the logging middleware
type LogConfig struct {
	// Enable console logging
	Console bool
	// Log file path, empty disables file logging
	LogFilePath string
	// Log format: "json" or "text"
	Format string
	// Include request body in logs. Bodies of ledger imports are never logged.
	IncludeBody bool
	// Only log requests that failed or answered with status >= 400
	ErrorsOnly bool
	// Skip logging for specific paths
	SkipPaths []string
}

// LogData contains all the information that will be logged
type LogData struct {
	Timestamp   time.Time     `json:"timestamp"`
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	URL         string        `json:"url"`
	Status      int           `json:"status"`
	Latency     time.Duration `json:"latency"`
	IP          string        `json:"ip"`
	UserAgent   string        `json:"user_agent"`
	RequestID   string        `json:"request_id"`
	RequestBody interface{}   `json:"request_body,omitempty"`
	Error       string        `json:"error,omitempty"`
	UserID      uint          `json:"user_id,omitempty"`
	DealerID    uint          `json:"dealer_id,omitempty"`
	Username    string        `json:"username,omitempty"`
}

// DefaultLogConfig returns a default configuration for the logging middleware
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Console:     true,
		LogFilePath: Constants.RequestLogFile,
		Format:      "json",
		SkipPaths:   []string{"/health"},
	}
}

// LoggingMiddleware creates a new logging middleware with the given configuration
func LoggingMiddleware(config ...LogConfig) fiber.Handler {
	cfg := DefaultLogConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.LogFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), 0755); err != nil {
			log.Printf("Error creating logs directory: %v\n", err)
		}
	}

	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *fiber.Ctx) error {
		if skip[c.Path()] {
			return c.Next()
		}
		start := time.Now()

		var requestBody interface{}
		if cfg.IncludeBody && c.Method() != fiber.MethodGet && !c.Is("multipart") {
			if body := c.Body(); len(body) > 0 {
				var jsonData interface{}
				if err := json.Unmarshal(body, &jsonData); err == nil {
					requestBody = jsonData
				} else {
					requestBody = string(body)
				}
			}
		}

		err := c.Next()

		status := c.Response().StatusCode()
		if cfg.ErrorsOnly && err == nil && status < 400 {
			return nil
		}

		logData := LogData{
			Timestamp:   start,
			Method:      c.Method(),
			Path:        c.Path(),
			URL:         c.OriginalURL(),
			Status:      status,
			Latency:     time.Since(start),
			IP:          c.IP(),
			UserAgent:   c.Get("User-Agent"),
			RequestID:   c.Get("X-Request-ID"),
			RequestBody: requestBody,
		}
		// Verify stores the user
		if user, ok := c.Locals("user").(Models.User); ok {
			logData.UserID = user.Id
			logData.DealerID = user.Dealer()
			logData.Username = user.Name
		}
		if err != nil {
			logData.Error = err.Error()
		}

		logRequest(cfg, logData)
		return err
	}
}

func logRequest(cfg LogConfig, data LogData) {
	var logMessage string
	if cfg.Format == "json" {
		jsonData, _ := json.Marshal(data)
		logMessage = string(jsonData)
	} else {
		logMessage = formatTextLog(data)
	}

	if cfg.Console {
		log.Println(logMessage)
	}
	if cfg.LogFilePath != "" {
		logToFile(cfg.LogFilePath, logMessage)
	}
}

// formatTextLog formats the log data as human-readable text
func formatTextLog(data LogData) string {
	user := ""
	if data.UserID != 0 {
		user = fmt.Sprintf(" user:%d(%s) dealer:%d", data.UserID, data.Username, data.DealerID)
	}
	return fmt.Sprintf(
		"[%s] %s %s %s %d %s %s%s",
		data.Timestamp.Format("2006-01-02 15:04:05"),
		data.Method,
		data.Path,
		statusIcon(data.Status),
		data.Status,
		data.Latency,
		data.IP,
		user,
	)
}

func statusIcon(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "✅"
	case status >= 300 && status < 400:
		return "🔄"
	case status >= 400 && status < 500:
		return "⚠️"
	case status >= 500:
		return "❌"
	default:
		return "❓"
	}
}

var fileMu sync.Mutex

// logToFile appends the log message to a file
func logToFile(filePath, message string) {
	fileMu.Lock()
	defer fileMu.Unlock()

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Error opening log file: %v\n", err)
		return
	}
	defer file.Close()

	if len(message) > 0 && message[len(message)-1] != '\n' {
		message += "\n"
	}
	if _, err := file.WriteString(message); err != nil {
		log.Printf("Error writing to log file: %v\n", err)
	}
}

// RequestLogger logs every request as JSON to the console and the configured file
func RequestLogger() fiber.Handler {
	return LoggingMiddleware(DefaultLogConfig())
}

// ErrorLogger writes failed requests, with their bodies, to the errors log next to the request log
func ErrorLogger() fiber.Handler {
	cfg := DefaultLogConfig()
	cfg.Console = false
	cfg.ErrorsOnly = true
	cfg.IncludeBody = true
	if cfg.LogFilePath != "" {
		cfg.LogFilePath = filepath.Join(filepath.Dir(cfg.LogFilePath), "errors.log")
	}
	return LoggingMiddleware(cfg)
}
