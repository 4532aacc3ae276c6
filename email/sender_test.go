package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"AgriDealer/Slack"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	cfg := Config{FromEmail: "digest@agridealer.in", FromName: "AgriDealer"}
	body := string(Build(cfg, Message{
		To:      []string{"a@example.com", "b@example.com"},
		CC:      []string{"c@example.com"},
		Subject: "Hello",
		Body:    "line one\nline two",
	}))

	assert.Contains(t, body, "From: AgriDealer <digest@agridealer.in>\r\n")
	assert.Contains(t, body, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, body, "Cc: c@example.com\r\n")
	assert.Contains(t, body, "Subject: Hello\r\n")
	assert.Contains(t, body, "\r\n\r\nline one\r\nline two")
}

func TestDigestMailer_Post(t *testing.T) {
	var sent []Message
	mailer := NewDigestMailer(Config{FromEmail: "digest@agridealer.in"})
	mailer.send = func(cfg Config, m Message) error {
		sent = append(sent, m)
		return nil
	}

	report := Slack.DigestReport{
		DealerName:  "Sri Sai Agro",
		DealerEmail: "dealer@example.com",
		Date:        time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Outstanding: decimal.NewFromInt(1000),
		Overdue:     decimal.Zero,
	}
	id, err := mailer.Post(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, "dealer@example.com", id)
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"dealer@example.com"}, sent[0].Recipients())
	assert.Equal(t, "Weekly digest for Sri Sai Agro, 01 Jul 2024", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Outstanding: 1000.00")
	assert.NotContains(t, sent[0].Body, "*")

	report.DealerEmail = ""
	_, err = mailer.Post(context.Background(), report)
	assert.Error(t, err)

	mailer.send = func(Config, Message) error { return errors.New("535 auth failed") }
	report.DealerEmail = "dealer@example.com"
	_, err = mailer.Post(context.Background(), report)
	assert.ErrorContains(t, err, "535 auth failed")
}
