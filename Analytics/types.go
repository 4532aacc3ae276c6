package Analytics

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind is the canonical kind of a ledger entry
type EntryKind string

const (
	CreditGiven     EntryKind = "CREDIT_GIVEN"
	PaymentReceived EntryKind = "PAYMENT_RECEIVED"
	InterestCharged EntryKind = "INTEREST_CHARGED"
	DiscountGiven   EntryKind = "DISCOUNT_GIVEN"
)

// ParseEntryKind accepts both the symbolic ("CreditGiven") and the serialized
// ("CREDIT_GIVEN", "credit_given") spellings of a kind.
func ParseEntryKind(raw string) (EntryKind, bool) {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.TrimSpace(raw)))
	switch key {
	case "creditgiven", "credit":
		return CreditGiven, true
	case "paymentreceived", "payment":
		return PaymentReceived, true
	case "interestcharged", "interest":
		return InterestCharged, true
	case "discountgiven", "discount":
		return DiscountGiven, true
	}
	return "", false
}

// IsDebit reports whether the kind increases what the debtor owes
func (k EntryKind) IsDebit() bool {
	return k == CreditGiven || k == InterestCharged
}

// IsSettlement reports whether the kind reduces what the debtor owes
func (k EntryKind) IsSettlement() bool {
	return k == PaymentReceived || k == DiscountGiven
}

type EntryStatus string

const (
	StatusActive   EntryStatus = "ACTIVE"
	StatusDisputed EntryStatus = "DISPUTED"
)

// ParseEntryStatus defaults to active for anything that is not a dispute
func ParseEntryStatus(raw string) EntryStatus {
	if strings.EqualFold(strings.TrimSpace(raw), string(StatusDisputed)) {
		return StatusDisputed
	}
	return StatusActive
}

// LedgerEntry is one credit, payment, interest charge or discount between a
// dealer (creditor) and a farmer (debtor). A zero OccurredAt means the date is unknown.
type LedgerEntry struct {
	ID         string          `json:"id"`
	DebtorID   string          `json:"debtor_id"`
	CreditorID string          `json:"creditor_id"`
	Amount     decimal.Decimal `json:"amount"`
	Kind       EntryKind       `json:"kind"`
	Status     EntryStatus     `json:"status"`
	OccurredAt time.Time       `json:"occurred_at"`
	Note       string          `json:"note,omitempty"`
}

// counts reports whether the entry takes part in any calculation
func (e LedgerEntry) counts() bool {
	return e.Status != StatusDisputed
}

// amount returns the entry amount, or zero when it is not strictly positive
func (e LedgerEntry) amount() decimal.Decimal {
	if !e.Amount.IsPositive() {
		return decimal.Zero
	}
	return e.Amount
}

type Farmer struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	Mobile      string `json:"mobile"`
	Village     string `json:"village"`
	Mandal      string `json:"mandal"`
	District    string `json:"district"`
	PrimaryCrop string `json:"primary_crop"`
}

// FarmPlot is a farmer's plot. Acreage is in whatever area unit the dealer uses.
type FarmPlot struct {
	ID        string    `json:"id"`
	FarmerID  string    `json:"farmer_id"`
	Acreage   float64   `json:"acreage"`
	SoilType  string    `json:"soil_type"`
	PlantType string    `json:"plant_type"`
	PlantedAt time.Time `json:"planted_at"`
}

type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
}

// InventorySignal is a pricing-free stock record used only by forecasting
type InventorySignal struct {
	DealerID      string  `json:"dealer_id"`
	ProductID     string  `json:"product_id"`
	StockQuantity float64 `json:"stock_quantity"`
	ReorderLevel  float64 `json:"reorder_level"`
	IsAvailable   bool    `json:"is_available"`
}

// Listing resolves an order line to a product sold by a vendor
type Listing struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	VendorID  string `json:"vendor_id"`
}

type Order struct {
	ID          string          `json:"id"`
	DebtorID    string          `json:"debtor_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PlacedAt    time.Time       `json:"placed_at"`
}

type OrderLineItem struct {
	OrderID   string          `json:"order_id"`
	ListingID string          `json:"listing_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// WeatherSnapshot is the weather provider output. Forecast holds the coming days, nearest first.
type WeatherSnapshot struct {
	TempMax     float64           `json:"temp_max"`
	TempMin     float64           `json:"temp_min"`
	RainfallMm  float64           `json:"rainfall_mm"`
	Humidity    float64           `json:"humidity"`
	WindSpeedKm float64           `json:"wind_speed_km"`
	Forecast    []WeatherSnapshot `json:"forecast,omitempty"`
}

var epoch = time.Unix(0, 0).UTC()

// effectiveDate maps an absent date to the Unix epoch
func effectiveDate(t time.Time) time.Time {
	if t.IsZero() {
		return epoch
	}
	return t
}
