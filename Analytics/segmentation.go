package Analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

type SegmentID string

const (
	SegmentWhales    SegmentID = "whales"
	SegmentLoyalists SegmentID = "loyalists"
	SegmentDormant   SegmentID = "dormant"
	SegmentProspects SegmentID = "prospects"
)

// SegmentationConfig holds the RFM thresholds
type SegmentationConfig struct {
	WhaleSpend    decimal.Decimal
	LoyalOrders   int
	RecencyMonths int
}

func DefaultSegmentationConfig() SegmentationConfig {
	return SegmentationConfig{
		WhaleSpend:    decimal.NewFromInt(100000),
		LoyalOrders:   5,
		RecencyMonths: 6,
	}
}

type Segment struct {
	ID       SegmentID       `json:"id"`
	Label    string          `json:"label"`
	Farmers  []Farmer        `json:"farmers"`
	AvgSpend decimal.Decimal `json:"avg_spend"`
}

var segmentLabels = map[SegmentID]string{
	SegmentWhales:    "High-value buyers",
	SegmentLoyalists: "Frequent buyers",
	SegmentDormant:   "Lapsed buyers",
	SegmentProspects: "No orders yet",
}

type customerActivity struct {
	spend  decimal.Decimal
	orders int
	last   time.Time
}

// SegmentFarmers partitions farmers with the default thresholds
func SegmentFarmers(farmers []Farmer, orders []Order, referenceDate time.Time) []Segment {
	return DefaultSegmentationConfig().Segment(farmers, orders, referenceDate)
}

// Segment puts each farmer in at most one segment, checking Whales, Loyalists,
// Dormant and Prospects in that order. Empty segments are left out.
func (cfg SegmentationConfig) Segment(farmers []Farmer, orders []Order, referenceDate time.Time) []Segment {
	activity := make(map[string]*customerActivity, len(farmers))
	for _, order := range orders {
		a, ok := activity[order.DebtorID]
		if !ok {
			a = &customerActivity{spend: decimal.Zero}
			activity[order.DebtorID] = a
		}
		if order.TotalAmount.IsPositive() {
			a.spend = a.spend.Add(order.TotalAmount)
		}
		a.orders++
		if placed := effectiveDate(order.PlacedAt); placed.After(a.last) {
			a.last = placed
		}
	}

	recencyCutoff := referenceDate.AddDate(0, -cfg.RecencyMonths, 0)
	ranking := []SegmentID{SegmentWhales, SegmentLoyalists, SegmentDormant, SegmentProspects}
	members := make(map[SegmentID][]Farmer)
	spend := make(map[SegmentID]decimal.Decimal)
	seen := make(map[string]bool, len(farmers))

	for _, farmer := range farmers {
		if seen[farmer.ID] {
			continue
		}
		seen[farmer.ID] = true

		a := activity[farmer.ID]
		if a == nil {
			a = &customerActivity{spend: decimal.Zero}
		}

		var id SegmentID
		switch {
		case a.spend.GreaterThan(cfg.WhaleSpend):
			id = SegmentWhales
		case a.orders > cfg.LoyalOrders:
			id = SegmentLoyalists
		case a.orders > 0 && a.last.Before(recencyCutoff):
			id = SegmentDormant
		case a.orders == 0:
			id = SegmentProspects
		default:
			continue
		}
		members[id] = append(members[id], farmer)
		if _, ok := spend[id]; !ok {
			spend[id] = decimal.Zero
		}
		spend[id] = spend[id].Add(a.spend)
	}

	segments := []Segment{}
	for _, id := range ranking {
		farmersIn := members[id]
		if len(farmersIn) == 0 {
			continue
		}
		segments = append(segments, Segment{
			ID:       id,
			Label:    segmentLabels[id],
			Farmers:  farmersIn,
			AvgSpend: spend[id].Div(decimal.NewFromInt(int64(len(farmersIn)))),
		})
	}
	return segments
}
