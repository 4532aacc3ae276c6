package Analytics

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// AgingBuckets splits unpaid credit by age
type AgingBuckets struct {
	Current    decimal.Decimal `json:"current"`
	Days30     decimal.Decimal `json:"days_30"`
	Days60     decimal.Decimal `json:"days_60"`
	Days90Plus decimal.Decimal `json:"days_90_plus"`
}

// NewAgingBuckets returns buckets with every amount at zero
func NewAgingBuckets() AgingBuckets {
	return AgingBuckets{
		Current:    decimal.Zero,
		Days30:     decimal.Zero,
		Days60:     decimal.Zero,
		Days90Plus: decimal.Zero,
	}
}

// Total is the sum of all buckets
func (b AgingBuckets) Total() decimal.Decimal {
	return b.Current.Add(b.Days30).Add(b.Days60).Add(b.Days90Plus)
}

// Overdue is everything older than 60 days
func (b AgingBuckets) Overdue() decimal.Decimal {
	return b.Days60.Add(b.Days90Plus)
}

// AgingShares are bucket fractions of the total, for progress bars
type AgingShares struct {
	Current    float64 `json:"current"`
	Days30     float64 `json:"days_30"`
	Days60     float64 `json:"days_60"`
	Days90Plus float64 `json:"days_90_plus"`
}

// Shares returns each bucket as a fraction of the total. All shares are zero when nothing is owed.
func (b AgingBuckets) Shares() AgingShares {
	total := b.Total()
	if !total.IsPositive() {
		return AgingShares{}
	}
	share := func(d decimal.Decimal) float64 {
		f, _ := d.Div(total).Float64()
		return f
	}
	return AgingShares{
		Current:    share(b.Current),
		Days30:     share(b.Days30),
		Days60:     share(b.Days60),
		Days90Plus: share(b.Days90Plus),
	}
}

func (b *AgingBuckets) add(ageDays int, amount decimal.Decimal) {
	switch {
	case ageDays < 30:
		b.Current = b.Current.Add(amount)
	case ageDays < 60:
		b.Days30 = b.Days30.Add(amount)
	case ageDays < 90:
		b.Days60 = b.Days60.Add(amount)
	default:
		b.Days90Plus = b.Days90Plus.Add(amount)
	}
}

// AgeDebt applies every payment and discount to the oldest credits first and
// buckets what remains of each credit by that credit's own date.
func AgeDebt(entries []LedgerEntry, now time.Time) AgingBuckets {
	buckets := NewAgingBuckets()

	ordered := slices.Clone(entries)
	slices.SortStableFunc(ordered, func(a, b LedgerEntry) int {
		return effectiveDate(a.OccurredAt).Compare(effectiveDate(b.OccurredAt))
	})

	pool := decimal.Zero
	for _, entry := range ordered {
		if entry.counts() && entry.Kind.IsSettlement() {
			pool = pool.Add(entry.amount())
		}
	}

	for _, entry := range ordered {
		if !entry.counts() || !entry.Kind.IsDebit() {
			continue
		}
		remaining := entry.amount()
		applied := decimal.Min(remaining, pool)
		remaining = remaining.Sub(applied)
		pool = pool.Sub(applied)

		if !remaining.IsPositive() {
			continue
		}
		buckets.add(ageInDays(entry.OccurredAt, now), remaining)
	}
	return buckets
}

// ageInDays counts whole days since t. Undated and future entries are 0 days old.
func ageInDays(t, now time.Time) int {
	at := effectiveDate(t)
	if at.Equal(epoch) || !now.After(at) {
		return 0
	}
	return int(now.Sub(at) / (24 * time.Hour))
}
