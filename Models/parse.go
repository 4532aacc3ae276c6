package Models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var (
	ErrInvalidAmount = errors.New("amount is not a positive number")
	ErrInvalidDate   = errors.New("date is not recognised")
	ErrInvalidKind   = errors.New("unknown ledger entry kind")
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"01-02-06", // excelize default short date
}

// ParseAmount parses a money amount, stripping thousands separators
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(raw))
	amount, err := decimal.NewFromString(cleaned)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// ParseOccurredAt parses the date formats seen in manual entry and spreadsheets.
// Empty input is an absent date and not an error.
func ParseOccurredAt(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, ErrInvalidDate
}

// ParseStringList decodes a JSON array sidecar. ok is false when the field is
// absent or unparseable; callers treat both the same way.
func ParseStringList(raw datatypes.JSON) (values []string, ok bool) {
	if len(raw) == 0 {
		return nil, false
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false
	}
	cleaned := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return cleaned, true
}

// TargetCropList returns the crops the product is meant for, if the app recorded any
func (p Product) TargetCropList() ([]string, bool) {
	return ParseStringList(p.TargetCrops)
}

// TargetSoilList returns the soils the product is meant for, if the app recorded any
func (p Product) TargetSoilList() ([]string, bool) {
	return ParseStringList(p.TargetSoils)
}

// TargetsCrop reports whether the product explicitly lists the crop. An absent or
// broken list targets nothing.
func (p Product) TargetsCrop(crop string) bool {
	crops, ok := p.TargetCropList()
	return ok && containsFold(crops, crop)
}

// TargetsSoil reports whether the product explicitly lists the soil type
func (p Product) TargetsSoil(soil string) bool {
	soils, ok := p.TargetSoilList()
	return ok && containsFold(soils, soil)
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
