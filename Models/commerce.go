package Models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product is a catalog item. TargetCrops and TargetSoils are JSON arrays written by
// the mobile app; read them with TargetCropList/TargetSoilList.
type Product struct {
	gorm.Model
	Name        string         `json:"name" gorm:"not null"`
	CategoryID  string         `json:"category_id" gorm:"index"`
	TargetCrops datatypes.JSON `json:"target_crops,omitempty"`
	TargetSoils datatypes.JSON `json:"target_soils,omitempty"`
}

// Listing is a dealer's commercial offer of a product
type Listing struct {
	gorm.Model
	ProductID uint            `json:"product_id" gorm:"index;not null"`
	VendorID  uint            `json:"vendor_id" gorm:"index;not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(14,2)"`
	Product   Product         `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// InventorySignal is a dealer's stock level for a product, kept apart from pricing
type InventorySignal struct {
	gorm.Model
	DealerID      uint    `json:"dealer_id" gorm:"uniqueIndex:idx_dealer_product;not null"`
	ProductID     uint    `json:"product_id" gorm:"uniqueIndex:idx_dealer_product;not null"`
	StockQuantity float64 `json:"stock_quantity"`
	ReorderLevel  float64 `json:"reorder_level"`
	IsAvailable   bool    `json:"is_available" gorm:"default:true"`
}

type Order struct {
	ID          string          `json:"id" gorm:"primaryKey;size:36"`
	FarmerID    uint            `json:"farmer_id" gorm:"index;not null"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(14,2)"`
	PlacedAt    time.Time       `json:"placed_at" gorm:"index"`
	Items       []OrderLineItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

type OrderLineItem struct {
	gorm.Model
	OrderID   string          `json:"order_id" gorm:"index;size:36;not null"`
	ListingID uint            `json:"listing_id" gorm:"index;not null"`
	Quantity  decimal.Decimal `json:"quantity" gorm:"type:decimal(14,3)"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(14,2)"`
}
