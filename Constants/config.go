package Constants

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"AgriDealer/Analytics"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Runtime settings, populated by Load
var (
	DBDriver   = "sqlite"
	DBPath     = "database.db"
	DBHost     = "127.0.0.1:3306"
	DBUser     = "root"
	DBPassword = ""
	DBName     = "agridealer"

	ServerAddr     = ":8000"
	JWTSecret      = "secret"
	RequestLogFile = "logs/requests.log"

	WhatsappGoService   = "http://localhost:3000"
	FirebaseCredentials = ""
	SlackBotToken       = ""
	SlackChannel        = ""

	SMTPHost     = ""
	SMTPPort     = 465
	SMTPUser     = ""
	SMTPPassword = ""
	SMTPFrom     = ""
	SMTPTLS      = true

	// Cron spec with seconds. Default: every day at 09:00.
	ReminderSchedule  = "0 0 9 * * *"
	DigestSchedule    = "0 30 7 * * 1"
	ReminderThreshold = decimal.NewFromInt(50000)
	HarvestMonths     = "10-12,3-5"
	ForecastRulesFile = ""
)

// Load reads .env (if present) and the process environment
func Load() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file loaded, using environment only")
	}

	DBDriver = getEnv("DB_DRIVER", DBDriver)
	DBPath = getEnv("DB_PATH", DBPath)
	DBHost = getEnv("DB_HOST", DBHost)
	DBUser = getEnv("DB_USER", DBUser)
	DBPassword = getEnv("DB_PASSWORD", DBPassword)
	DBName = getEnv("DB_NAME", DBName)

	ServerAddr = getEnv("SERVER_ADDR", ServerAddr)
	JWTSecret = getEnv("JWT_SECRET", JWTSecret)
	if value, ok := os.LookupEnv("REQUEST_LOG_FILE"); ok {
		RequestLogFile = strings.TrimSpace(value)
	}

	WhatsappGoService = strings.TrimRight(getEnv("WHATSAPP_SERVICE_URL", WhatsappGoService), "/")
	FirebaseCredentials = getEnv("FIREBASE_CREDENTIALS", FirebaseCredentials)
	SlackBotToken = getEnv("SLACK_BOT_TOKEN", SlackBotToken)
	SlackChannel = getEnv("SLACK_CHANNEL", SlackChannel)

	SMTPHost = getEnv("SMTP_HOST", SMTPHost)
	SMTPUser = getEnv("SMTP_USER", SMTPUser)
	SMTPPassword = getEnv("SMTP_PASSWORD", SMTPPassword)
	SMTPFrom = getEnv("SMTP_FROM", SMTPFrom)
	if port, err := strconv.Atoi(getEnv("SMTP_PORT", "")); err == nil && port > 0 {
		SMTPPort = port
	}
	if raw := getEnv("SMTP_TLS", ""); raw != "" {
		SMTPTLS, _ = strconv.ParseBool(raw)
	}

	ReminderSchedule = getEnv("REMINDER_SCHEDULE", ReminderSchedule)
	DigestSchedule = getEnv("DIGEST_SCHEDULE", DigestSchedule)
	HarvestMonths = getEnv("HARVEST_MONTHS", HarvestMonths)
	ForecastRulesFile = getEnv("FORECAST_RULES_FILE", ForecastRulesFile)

	if raw := os.Getenv("REMINDER_THRESHOLD"); raw != "" {
		threshold, err := decimal.NewFromString(raw)
		if err != nil || threshold.IsNegative() {
			log.Printf("Ignoring invalid REMINDER_THRESHOLD %q\n", raw)
		} else {
			ReminderThreshold = threshold
		}
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

// ParseMonthRanges parses "10-12,3-5" style month windows. A single month ("7") is a one-month window.
func ParseMonthRanges(raw string) ([]Analytics.MonthRange, error) {
	var ranges []Analytics.MonthRange
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.SplitN(part, "-", 2)
		from, err := parseMonth(bounds[0])
		if err != nil {
			return nil, err
		}
		to := from
		if len(bounds) == 2 {
			if to, err = parseMonth(bounds[1]); err != nil {
				return nil, err
			}
		}
		ranges = append(ranges, Analytics.MonthRange{From: from, To: to})
	}
	return ranges, nil
}

func parseMonth(raw string) (time.Month, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > 12 {
		return 0, fmt.Errorf("invalid month %q", raw)
	}
	return time.Month(n), nil
}

// ReminderPolicy builds the reminder rules from the loaded settings
func ReminderPolicy() Analytics.ReminderPolicy {
	policy := Analytics.DefaultReminderPolicy()
	policy.HighBalanceThreshold = ReminderThreshold
	windows, err := ParseMonthRanges(HarvestMonths)
	if err != nil {
		log.Printf("Invalid HARVEST_MONTHS %q, using defaults: %v\n", HarvestMonths, err)
		return policy
	}
	policy.HarvestWindows = windows
	return policy
}

// ForecastConfig returns the default forecast setup, with the rule table replaced
// by FORECAST_RULES_FILE when one is configured
func ForecastConfig() Analytics.ForecastConfig {
	cfg := Analytics.DefaultForecastConfig()
	if ForecastRulesFile == "" {
		return cfg
	}
	specs, err := Analytics.LoadRuleSpecs(ForecastRulesFile)
	if err != nil {
		log.Printf("Error loading forecast rules, using defaults: %v\n", err)
		return cfg
	}
	rules, err := Analytics.CompileRules(specs)
	if err != nil {
		log.Printf("Error compiling forecast rules, using defaults: %v\n", err)
		return cfg
	}
	cfg.Rules = rules
	return cfg
}
