package Alerts

import (
	"context"
	"errors"
	"fmt"
	"log"

	"AgriDealer/Analytics"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Sender is the part of the FCM client used here. *messaging.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushClient sends notifications to dealers' devices
type PushClient struct {
	sender Sender
}

// NewPushClient initializes Firebase from a service account file
func NewPushClient(ctx context.Context, credentialsFile string) (*PushClient, error) {
	if credentialsFile == "" {
		return nil, errors.New("no firebase credentials configured")
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Messaging client: %w", err)
	}
	log.Println("Firebase initialized successfully")
	return &PushClient{sender: client}, nil
}

func NewPushClientWith(sender Sender) *PushClient {
	return &PushClient{sender: sender}
}

var urgencyColors = map[Analytics.Urgency]string{
	Analytics.UrgencyHigh:   "#D32F2F",
	Analytics.UrgencyMedium: "#F9A825",
	Analytics.UrgencyLow:    "#388E3C",
}

// ReminderMessage builds the dealer-facing notification for a reminder that was sent to a farmer
func ReminderMessage(token string, statement Analytics.Statement) *messaging.Message {
	farmer := statement.Farmer
	return &messaging.Message{
		Token: token,
		Data: map[string]string{
			"type":      "payment_reminder",
			"farmer_id": farmer.ID,
			"balance":   statement.Balance.StringFixed(2),
			"urgency":   string(statement.Reminder.Urgency),
			"overdue":   statement.Aging.Overdue().StringFixed(2),
		},
		Notification: &messaging.Notification{
			Title: fmt.Sprintf("Payment reminder sent (%s)", statement.Reminder.Urgency),
			Body:  fmt.Sprintf("%s, %s owes %s", farmer.FullName, farmer.Village, statement.Balance.StringFixed(2)),
		},
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Color: urgencyColors[statement.Reminder.Urgency],
				Sound: "default",
			},
			Priority: "high",
		},
	}
}

// NotifyReminder sends the reminder notification to every token and returns how many were delivered.
// The error joins every failed send.
func (p *PushClient) NotifyReminder(ctx context.Context, tokens []string, statement Analytics.Statement) (int, error) {
	if p == nil || p.sender == nil {
		return 0, errors.New("firebase client not initialized")
	}
	sent := 0
	var errs []error
	for _, token := range tokens {
		if _, err := p.sender.Send(ctx, ReminderMessage(token, statement)); err != nil {
			errs = append(errs, fmt.Errorf("token %.8s: %w", token, err))
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}
