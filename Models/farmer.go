package Models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Farmer is a dealer's customer. SyncStatus belongs to the mobile sync layer only.
type Farmer struct {
	gorm.Model
	DealerID    uint       `json:"dealer_id" gorm:"index;not null"`
	FullName    string     `json:"full_name" gorm:"not null"`
	Mobile      string     `json:"mobile" gorm:"index"`
	Village     string     `json:"village"`
	Mandal      string     `json:"mandal"`
	District    string     `json:"district"`
	PrimaryCrop string     `json:"primary_crop"`
	SyncStatus  string     `json:"sync_status,omitempty"`
	Plots       []FarmPlot `json:"plots,omitempty" gorm:"foreignKey:FarmerID"`
}

type FarmPlot struct {
	gorm.Model
	FarmerID  uint       `json:"farmer_id" gorm:"index;not null"`
	Acreage   float64    `json:"acreage"`
	SoilType  string     `json:"soil_type"`
	PlantType string     `json:"plant_type"`
	PlantedAt *time.Time `json:"planted_at"`
}

// Ledger entry kinds and statuses as stored
const (
	KindCreditGiven     = "CREDIT_GIVEN"
	KindPaymentReceived = "PAYMENT_RECEIVED"
	KindInterestCharged = "INTEREST_CHARGED"
	KindDiscountGiven   = "DISCOUNT_GIVEN"

	StatusActive   = "ACTIVE"
	StatusDisputed = "DISPUTED"
)

// LedgerEntry is a stored credit, payment, interest charge or discount.
// Only Status changes after creation.
type LedgerEntry struct {
	ID         string          `json:"id" gorm:"primaryKey;size:36"`
	FarmerID   uint            `json:"farmer_id" gorm:"index;not null"`
	DealerID   uint            `json:"dealer_id" gorm:"index;not null"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	Kind       string          `json:"kind" gorm:"size:32;not null"`
	Status     string          `json:"status" gorm:"size:16;not null;default:ACTIVE"`
	OccurredAt *time.Time      `json:"occurred_at"`
	Note       string          `json:"note"`
	SyncStatus string          `json:"sync_status,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = StatusActive
	}
	return nil
}

// ReminderLog records each reminder sent to a farmer
type ReminderLog struct {
	gorm.Model
	FarmerID uint            `json:"farmer_id" gorm:"index;not null"`
	DealerID uint            `json:"dealer_id" gorm:"index"`
	Balance  decimal.Decimal `json:"balance" gorm:"type:decimal(14,2)"`
	Urgency  string          `json:"urgency"`
	Message  string          `json:"message"`
	Channel  string          `json:"channel"`
	SentOn   string          `json:"sent_on" gorm:"index;size:10"` // 2006-01-02
	Error    string          `json:"error,omitempty" gorm:"column:send_error"`
}
