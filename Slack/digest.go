package Slack

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"AgriDealer/Analytics"

	"github.com/shopspring/decimal"
	"github.com/slack-go/slack"
)

// Poster is the part of the Slack client used for digests. *slack.Client satisfies it.
type Poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// DigestReport is one dealer's weekly summary
type DigestReport struct {
	DealerName   string
	DealerEmail  string
	Date         time.Time
	Predictions  []Analytics.Prediction
	Outstanding  decimal.Decimal
	Overdue      decimal.Decimal
	RemindersDue int
}

// Risks returns the predictions whose stock does not cover demand, largest gap first
func (r DigestReport) Risks() []Analytics.Prediction {
	var risks []Analytics.Prediction
	for _, p := range r.Predictions {
		if p.StockStatus != Analytics.StockOK {
			risks = append(risks, p)
		}
	}
	return risks
}

var statusIcons = map[Analytics.StockStatus]string{
	Analytics.StockCriticalOut: "🔴",
	Analytics.StockLow:         "🟠",
	Analytics.StockOK:          "🟢",
}

// FormatDigest renders the report as Slack mrkdwn
func FormatDigest(r DigestReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("*Weekly digest for %s* (%s)\n\n", r.DealerName, r.Date.Format("02 Jan 2006")))

	b.WriteString("*Credit*\n")
	b.WriteString(fmt.Sprintf("- Outstanding: %s\n", r.Outstanding.StringFixed(2)))
	b.WriteString(fmt.Sprintf("- Over 60 days: %s\n", r.Overdue.StringFixed(2)))
	b.WriteString(fmt.Sprintf("- Farmers due a reminder: %d\n\n", r.RemindersDue))

	risks := r.Risks()
	if len(risks) == 0 {
		b.WriteString("*Stock*\nAll forecast demand is covered by current stock ✅\n")
		return b.String()
	}
	b.WriteString("*Stock risks*\n")
	for _, p := range risks {
		b.WriteString(fmt.Sprintf("%s %s: need %.1f %s, have %.1f (short %.1f)\n",
			statusIcons[p.StockStatus], p.ProductName, p.PredictedQuantity, p.Unit, p.Stock, p.Gap))
		b.WriteString(fmt.Sprintf("    _%s_\n", p.Reasoning))
	}
	return b.String()
}

// Digest posts dealer reports to one channel
type Digest struct {
	poster  Poster
	channel string
}

func NewDigest(token, channel string) *Digest {
	return &Digest{poster: slack.New(token, slack.OptionDebug(false)), channel: channel}
}

func NewDigestWith(poster Poster, channel string) *Digest {
	return &Digest{poster: poster, channel: channel}
}

// Post sends one report and returns the message timestamp
func (d *Digest) Post(ctx context.Context, r DigestReport) (string, error) {
	if d == nil || d.poster == nil || d.channel == "" {
		return "", errors.New("slack digest is not configured")
	}
	text := FormatDigest(r)
	_, ts, err := d.poster.PostMessageContext(ctx, d.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		return "", fmt.Errorf("posting digest for %s: %w", r.DealerName, err)
	}
	return ts, nil
}
