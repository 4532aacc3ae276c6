package Analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// MonthRange is an inclusive range of calendar months (1-12)
type MonthRange struct {
	From time.Month `json:"from"`
	To   time.Month `json:"to"`
}

// Contains handles ranges that wrap past December, e.g. Nov-Feb
func (r MonthRange) Contains(m time.Month) bool {
	if r.From <= r.To {
		return m >= r.From && m <= r.To
	}
	return m >= r.From || m <= r.To
}

// ReminderPolicy holds the knobs of the reminder rules
type ReminderPolicy struct {
	HighBalanceThreshold decimal.Decimal
	HarvestWindows       []MonthRange
}

// DefaultReminderPolicy reminds during Oct-Dec and Mar-May harvests, and above 50,000 otherwise
func DefaultReminderPolicy() ReminderPolicy {
	return ReminderPolicy{
		HighBalanceThreshold: decimal.NewFromInt(50000),
		HarvestWindows: []MonthRange{
			{From: time.October, To: time.December},
			{From: time.March, To: time.May},
		},
	}
}

// Reminder is advisory text; sending it is up to the caller
type Reminder struct {
	ShouldRemind bool    `json:"should_remind"`
	Message      string  `json:"message"`
	Urgency      Urgency `json:"urgency"`
}

func (p ReminderPolicy) isHarvest(m time.Month) bool {
	for _, window := range p.HarvestWindows {
		if window.Contains(m) {
			return true
		}
	}
	return false
}

// Advise decides whether the farmer should be reminded of the balance. First match wins.
func (p ReminderPolicy) Advise(farmer Farmer, balance decimal.Decimal, referenceDate time.Time) Reminder {
	if !balance.IsPositive() {
		return Reminder{Urgency: UrgencyLow}
	}

	name := farmer.FullName
	if name == "" {
		name = "Farmer"
	}
	amount := balance.StringFixed(2)

	if p.isHarvest(referenceDate.Month()) {
		return Reminder{
			ShouldRemind: true,
			Urgency:      UrgencyMedium,
			Message: fmt.Sprintf(
				"Namaste %s, hope the harvest is going well. Your outstanding balance with us is %s. Kindly clear it from this season's sale proceeds.",
				name, amount),
		}
	}

	if balance.GreaterThan(p.HighBalanceThreshold) {
		return Reminder{
			ShouldRemind: true,
			Urgency:      UrgencyHigh,
			Message: fmt.Sprintf(
				"Namaste %s, your outstanding balance has reached %s. Please make at least a partial payment soon so we can keep supplying your inputs on credit.",
				name, amount),
		}
	}

	return Reminder{Urgency: UrgencyLow}
}

// AdviseReminder applies the default policy
func AdviseReminder(farmer Farmer, balance decimal.Decimal, referenceDate time.Time) Reminder {
	return DefaultReminderPolicy().Advise(farmer, balance, referenceDate)
}

// Statement is a farmer's credit position on a given date
type Statement struct {
	Farmer   Farmer          `json:"farmer"`
	AsOf     time.Time       `json:"as_of"`
	Balance  decimal.Decimal `json:"balance"`
	Aging    AgingBuckets    `json:"aging"`
	Shares   AgingShares     `json:"shares"`
	Reminder Reminder        `json:"reminder"`
}

// BuildStatement computes balance, aging and the reminder advice in one pass over the entries
func (p ReminderPolicy) BuildStatement(farmer Farmer, entries []LedgerEntry, now time.Time) Statement {
	balance := Balance(entries)
	aging := AgeDebt(entries, now)
	return Statement{
		Farmer:   farmer,
		AsOf:     now,
		Balance:  balance,
		Aging:    aging,
		Shares:   aging.Shares(),
		Reminder: p.Advise(farmer, balance, now),
	}
}
