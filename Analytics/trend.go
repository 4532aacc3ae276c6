package Analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

const trendMonths = 6

// TrendPoint is one calendar month of vendor revenue
type TrendPoint struct {
	Period  string          `json:"period"`
	Label   string          `json:"label"`
	Revenue decimal.Decimal `json:"revenue"`
	Count   int             `json:"count"`
}

// MonthlyTrend returns six monthly buckets ending at referenceDate's month, oldest first.
// Orders outside the window and lines from other vendors are ignored.
func MonthlyTrend(orders []Order, items []OrderLineItem, listings []Listing, vendorID string, referenceDate time.Time) []TrendPoint {
	loc := referenceDate.Location()
	start := time.Date(referenceDate.Year(), referenceDate.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -(trendMonths - 1), 0)

	points := make([]TrendPoint, trendMonths)
	index := make(map[string]int, trendMonths)
	for i := range points {
		month := start.AddDate(0, i, 0)
		points[i] = TrendPoint{
			Period:  month.Format("2006-01"),
			Label:   month.Format("Jan 06"),
			Revenue: decimal.Zero,
		}
		index[points[i].Period] = i
	}

	vendorListings := make(map[string]bool)
	for _, l := range listings {
		if l.VendorID == vendorID {
			vendorListings[l.ID] = true
		}
	}

	revenueByOrder := make(map[string]decimal.Decimal)
	for _, item := range items {
		if !vendorListings[item.ListingID] {
			continue
		}
		line := item.Quantity.Mul(item.UnitPrice)
		if current, ok := revenueByOrder[item.OrderID]; ok {
			revenueByOrder[item.OrderID] = current.Add(line)
		} else {
			revenueByOrder[item.OrderID] = line
		}
	}

	for _, order := range orders {
		revenue, ok := revenueByOrder[order.ID]
		if !ok || !revenue.IsPositive() || order.PlacedAt.IsZero() {
			continue
		}
		i, ok := index[order.PlacedAt.In(loc).Format("2006-01")]
		if !ok {
			continue
		}
		points[i].Revenue = points[i].Revenue.Add(revenue)
		points[i].Count++
	}
	return points
}
