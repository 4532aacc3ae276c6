package Analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var ravi = Farmer{ID: "f-1", FullName: "Ravi Kumar", Mobile: "9876543210", District: "Eluru"}

func TestAdviseReminder_Thresholds(t *testing.T) {
	july := time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)
	november := time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC)

	high := AdviseReminder(ravi, decimal.NewFromInt(60000), july)
	assert.True(t, high.ShouldRemind)
	assert.Equal(t, UrgencyHigh, high.Urgency)
	assert.Contains(t, high.Message, "60000.00")
	assert.Contains(t, high.Message, "partial payment")

	harvest := AdviseReminder(ravi, decimal.NewFromInt(10000), november)
	assert.True(t, harvest.ShouldRemind)
	assert.Equal(t, UrgencyMedium, harvest.Urgency)
	assert.Contains(t, harvest.Message, "10000.00")
	assert.Contains(t, harvest.Message, "harvest")

	for _, when := range []time.Time{july, november} {
		none := AdviseReminder(ravi, decimal.Zero, when)
		assert.False(t, none.ShouldRemind)
		assert.Empty(t, none.Message)
	}

	quiet := AdviseReminder(ravi, decimal.NewFromInt(10000), july)
	assert.False(t, quiet.ShouldRemind)
}

func TestAdviseReminder_HarvestBeatsHighBalance(t *testing.T) {
	april := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	r := AdviseReminder(ravi, decimal.NewFromInt(90000), april)
	assert.Equal(t, UrgencyMedium, r.Urgency)
}

func TestAdviseReminder_NegativeBalance(t *testing.T) {
	r := AdviseReminder(ravi, decimal.NewFromInt(-500), time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, r.ShouldRemind)
}

func TestReminderPolicy_Configurable(t *testing.T) {
	policy := ReminderPolicy{
		HighBalanceThreshold: decimal.NewFromInt(1000),
		HarvestWindows:       []MonthRange{{From: time.November, To: time.February}},
	}
	january := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	june := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, UrgencyMedium, policy.Advise(ravi, decimal.NewFromInt(10), january).Urgency)
	assert.Equal(t, UrgencyHigh, policy.Advise(ravi, decimal.NewFromInt(1001), june).Urgency)
	assert.False(t, policy.Advise(ravi, decimal.NewFromInt(1000), june).ShouldRemind)
}

func TestMonthRange_Contains(t *testing.T) {
	wrap := MonthRange{From: time.November, To: time.February}
	assert.True(t, wrap.Contains(time.December))
	assert.True(t, wrap.Contains(time.January))
	assert.False(t, wrap.Contains(time.March))

	plain := MonthRange{From: time.March, To: time.May}
	assert.True(t, plain.Contains(time.March))
	assert.True(t, plain.Contains(time.May))
	assert.False(t, plain.Contains(time.June))
}

func TestBuildStatement(t *testing.T) {
	now := time.Date(2025, time.July, 20, 0, 0, 0, 0, time.UTC)
	entries := []LedgerEntry{
		entry("c1", CreditGiven, 70000, now.AddDate(0, 0, -100)),
		entry("p1", PaymentReceived, 5000, now.AddDate(0, 0, -10)),
	}
	st := DefaultReminderPolicy().BuildStatement(ravi, entries, now)

	assertDecimal(t, 65000, st.Balance)
	assertDecimal(t, 65000, st.Aging.Days90Plus)
	assert.InDelta(t, 1.0, st.Shares.Days90Plus, 1e-9)
	assert.Equal(t, UrgencyHigh, st.Reminder.Urgency)
	assert.Equal(t, now, st.AsOf)
}
