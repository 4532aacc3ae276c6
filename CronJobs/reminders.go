package CronJobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"AgriDealer/Analytics"
	"AgriDealer/Models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Messenger delivers a text to a farmer's mobile
type Messenger interface {
	Send(ctx context.Context, phone, message string) error
}

// PushNotifier tells the dealer's devices that a reminder went out
type PushNotifier interface {
	NotifyReminder(ctx context.Context, tokens []string, statement Analytics.Statement) (int, error)
}

// RunSummary counts what one reminder sweep did
type RunSummary struct {
	Checked  int `json:"checked"`
	Reminded int `json:"reminded"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// ReminderScheduler sends payment reminders to farmers on a cron schedule
type ReminderScheduler struct {
	cronScheduler *cron.Cron
	running       sync.Mutex

	DB        *gorm.DB
	Policy    Analytics.ReminderPolicy
	Messenger Messenger
	Push      PushNotifier
	// Now is the clock, replaceable in tests
	Now func() time.Time
}

// NewReminderScheduler creates a scheduler. Push may be nil.
func NewReminderScheduler(db *gorm.DB, policy Analytics.ReminderPolicy, messenger Messenger, push PushNotifier) *ReminderScheduler {
	return &ReminderScheduler{
		cronScheduler: cron.New(cron.WithSeconds()),
		DB:            db,
		Policy:        policy,
		Messenger:     messenger,
		Push:          push,
		Now:           time.Now,
	}
}

// Start schedules the sweep. Format: "0 0 9 * * *" = at 09:00:00 every day
func (s *ReminderScheduler) Start(schedule string) error {
	if _, err := s.cronScheduler.AddFunc(schedule, s.scheduledRun); err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}
	s.cronScheduler.Start()
	log.Printf("Reminder scheduler started with schedule %q\n", schedule)
	return nil
}

func (s *ReminderScheduler) Stop() {
	if s.cronScheduler != nil {
		<-s.cronScheduler.Stop().Done()
		log.Println("Reminder scheduler stopped")
	}
}

func (s *ReminderScheduler) scheduledRun() {
	log.Println("Running scheduled reminder sweep")
	summary, err := s.Run(context.Background())
	if err != nil {
		log.Printf("Error in reminder sweep: %v\n", err)
		return
	}
	log.Printf("Reminder sweep done: checked %d, reminded %d, skipped %d, failed %d\n",
		summary.Checked, summary.Reminded, summary.Skipped, summary.Failed)
}

// Run checks every farmer once. Farmers already reminded today are skipped, so
// overlapping or repeated runs on the same day send nothing twice.
func (s *ReminderScheduler) Run(ctx context.Context) (RunSummary, error) {
	var summary RunSummary
	if !s.running.TryLock() {
		return summary, fmt.Errorf("a reminder sweep is already running")
	}
	defer s.running.Unlock()

	now := s.Now()
	today := now.Format("2006-01-02")

	var farmers []Models.Farmer
	if err := s.DB.Order("dealer_id, id").Find(&farmers).Error; err != nil {
		return summary, fmt.Errorf("loading farmers: %w", err)
	}

	var sentToday []uint
	if err := s.DB.Model(&Models.ReminderLog{}).
		Where("sent_on = ? AND send_error = ?", today, "").
		Pluck("farmer_id", &sentToday).Error; err != nil {
		return summary, fmt.Errorf("loading today's reminders: %w", err)
	}
	alreadySent := make(map[uint]bool, len(sentToday))
	for _, id := range sentToday {
		alreadySent[id] = true
	}

	tokens := map[uint][]string{}
	for _, farmer := range farmers {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Checked++
		if alreadySent[farmer.ID] {
			summary.Skipped++
			continue
		}

		statement, err := Models.Statement(s.DB, farmer.DealerID, farmer.ID, s.Policy, now)
		if err != nil {
			log.Printf("Error building statement for farmer %d: %v\n", farmer.ID, err)
			summary.Failed++
			continue
		}
		if !statement.Reminder.ShouldRemind {
			continue
		}
		if farmer.Mobile == "" {
			log.Printf("Farmer %d is due a reminder but has no mobile number\n", farmer.ID)
			summary.Skipped++
			continue
		}

		entry := Models.ReminderLog{
			FarmerID: farmer.ID,
			DealerID: farmer.DealerID,
			Balance:  statement.Balance,
			Urgency:  string(statement.Reminder.Urgency),
			Message:  statement.Reminder.Message,
			Channel:  "whatsapp",
			SentOn:   today,
		}
		if err := s.Messenger.Send(ctx, farmer.Mobile, statement.Reminder.Message); err != nil {
			entry.Error = err.Error()
			summary.Failed++
		} else {
			summary.Reminded++
		}
		if err := s.DB.Create(&entry).Error; err != nil {
			log.Printf("Error saving reminder log for farmer %d: %v\n", farmer.ID, err)
		}
		if entry.Error != "" || s.Push == nil {
			continue
		}

		dealerTokens, ok := tokens[farmer.DealerID]
		if !ok {
			dealerTokens = s.dealerTokens(farmer.DealerID)
			tokens[farmer.DealerID] = dealerTokens
		}
		if len(dealerTokens) == 0 {
			continue
		}
		if _, err := s.Push.NotifyReminder(ctx, dealerTokens, statement); err != nil {
			log.Printf("Error notifying dealer %d: %v\n", farmer.DealerID, err)
		}
	}
	return summary, nil
}

// dealerTokens returns the device tokens of the dealer and their staff
func (s *ReminderScheduler) dealerTokens(dealerID uint) []string {
	var tokens []string
	err := s.DB.Model(&Models.DeviceToken{}).
		Joins("JOIN users ON users.id = device_tokens.user_id").
		Where("users.id = ? OR users.dealer_id = ?", dealerID, dealerID).
		Pluck("device_tokens.value", &tokens).Error
	if err != nil {
		log.Printf("Error loading device tokens for dealer %d: %v\n", dealerID, err)
	}
	return tokens
}
