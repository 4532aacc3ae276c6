package CronJobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"AgriDealer/Analytics"
	"AgriDealer/Models"
	"AgriDealer/Slack"
	"AgriDealer/Weather"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DigestPoster publishes a dealer's weekly digest
type DigestPoster interface {
	Post(ctx context.Context, r Slack.DigestReport) (string, error)
}

// DigestJob builds a stock-risk and credit digest for every dealer
type DigestJob struct {
	cronScheduler *cron.Cron

	DB       *gorm.DB
	Weather  Weather.Provider
	Poster   DigestPoster
	Policy   Analytics.ReminderPolicy
	Forecast Analytics.ForecastConfig
	Now      func() time.Time
}

func NewDigestJob(db *gorm.DB, weather Weather.Provider, poster DigestPoster, policy Analytics.ReminderPolicy, forecast Analytics.ForecastConfig) *DigestJob {
	return &DigestJob{
		cronScheduler: cron.New(cron.WithSeconds()),
		DB:            db,
		Weather:       weather,
		Poster:        poster,
		Policy:        policy,
		Forecast:      forecast,
		Now:           time.Now,
	}
}

func (j *DigestJob) Start(schedule string) error {
	_, err := j.cronScheduler.AddFunc(schedule, func() {
		log.Println("Running scheduled dealer digest")
		posted, err := j.Run(context.Background())
		if err != nil {
			log.Printf("Error in dealer digest: %v\n", err)
			return
		}
		log.Printf("Dealer digest posted for %d dealers\n", posted)
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}
	j.cronScheduler.Start()
	log.Printf("Digest scheduler started with schedule %q\n", schedule)
	return nil
}

func (j *DigestJob) Stop() {
	if j.cronScheduler != nil {
		<-j.cronScheduler.Stop().Done()
	}
}

// Run posts one digest per dealer account and returns how many were posted
func (j *DigestJob) Run(ctx context.Context) (int, error) {
	var dealers []Models.User
	if err := j.DB.Where("permission = ? AND dealer_id = 0", Models.PermissionDealer).Order("id").Find(&dealers).Error; err != nil {
		return 0, fmt.Errorf("loading dealers: %w", err)
	}

	posted := 0
	for _, dealer := range dealers {
		report, err := j.Report(ctx, dealer)
		if err != nil {
			log.Printf("Error building digest for dealer %d: %v\n", dealer.Id, err)
			continue
		}
		if _, err := j.Poster.Post(ctx, report); err != nil {
			log.Printf("Error posting digest for dealer %d: %v\n", dealer.Id, err)
			continue
		}
		posted++
	}
	return posted, nil
}

// Report computes one dealer's digest: forecast stock risks and the credit position of their farmers
func (j *DigestJob) Report(ctx context.Context, dealer Models.User) (Slack.DigestReport, error) {
	now := j.Now()
	report := Slack.DigestReport{
		DealerName:  dealer.Name,
		DealerEmail: dealer.Email,
		Date:        now,
		Outstanding: decimal.Zero,
		Overdue:     decimal.Zero,
	}

	data, err := Models.LoadDealerData(j.DB, dealer.Id)
	if err != nil {
		return report, err
	}

	district := ""
	if len(data.Farmers) > 0 {
		district = data.Farmers[0].District
	}
	weather, err := j.Weather.Snapshot(ctx, district, now)
	if err != nil {
		return report, fmt.Errorf("weather for %q: %w", district, err)
	}
	report.Predictions = data.Forecast(j.Forecast, dealer.Id, weather, now)

	var farmers []Models.Farmer
	if err := j.DB.Where("dealer_id = ?", dealer.Id).Find(&farmers).Error; err != nil {
		return report, fmt.Errorf("loading farmers: %w", err)
	}
	for _, farmer := range farmers {
		statement, err := Models.Statement(j.DB, dealer.Id, farmer.ID, j.Policy, now)
		if err != nil {
			return report, err
		}
		if statement.Balance.IsPositive() {
			report.Outstanding = report.Outstanding.Add(statement.Balance)
		}
		report.Overdue = report.Overdue.Add(statement.Aging.Overdue())
		if statement.Reminder.ShouldRemind {
			report.RemindersDue++
		}
	}
	return report, nil
}
