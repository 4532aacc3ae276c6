package Models

import (
	"testing"
	"time"

	"AgriDealer/Analytics"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection to :memory: would be a separate database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func at(day int) *time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
	return &t
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount(" 12,500.50 ")
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("12500.50")))

	for _, raw := range []string{"", "abc", "0", "-10"} {
		_, err := ParseAmount(raw)
		assert.ErrorIs(t, err, ErrInvalidAmount, raw)
	}
}

func TestParseOccurredAt(t *testing.T) {
	got, err := ParseOccurredAt("15/03/2024")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *got)

	got, err = ParseOccurredAt("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, 15, got.Day())

	got, err = ParseOccurredAt("  ")
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseOccurredAt("yesterday")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseStringList(t *testing.T) {
	values, ok := ParseStringList(datatypes.JSON(`["Paddy", " ", "Cotton"]`))
	assert.True(t, ok)
	assert.Equal(t, []string{"Paddy", "Cotton"}, values)

	_, ok = ParseStringList(nil)
	assert.False(t, ok)

	_, ok = ParseStringList(datatypes.JSON(`{"crop": "Paddy"}`))
	assert.False(t, ok, "malformed sidecar is treated as absent")
}

func TestProductTargetsCrop(t *testing.T) {
	urea := Product{Name: "Urea", TargetCrops: datatypes.JSON(`["paddy","maize"]`)}
	assert.True(t, urea.TargetsCrop("Paddy"))
	assert.False(t, urea.TargetsCrop("Cotton"))

	broken := Product{Name: "Zinc", TargetCrops: datatypes.JSON(`not json`)}
	assert.False(t, broken.TargetsCrop("Paddy"))
	assert.False(t, Product{Name: "Sickle"}.TargetsCrop("Paddy"))
}

func TestLedgerEntryToAnalytics(t *testing.T) {
	stored := LedgerEntry{
		ID:         "e1",
		FarmerID:   7,
		DealerID:   3,
		Amount:     decimal.NewFromInt(500),
		Kind:       "credit_given",
		Status:     "disputed",
		OccurredAt: at(10),
		SyncStatus: "PENDING",
	}
	entry := stored.ToAnalytics()
	assert.Equal(t, "7", entry.DebtorID)
	assert.Equal(t, "3", entry.CreditorID)
	assert.Equal(t, Analytics.CreditGiven, entry.Kind)
	assert.Equal(t, Analytics.StatusDisputed, entry.Status)
	assert.Equal(t, *at(10), entry.OccurredAt)

	stored.Kind = "REFUND"
	stored.OccurredAt = nil
	entry = stored.ToAnalytics()
	assert.Empty(t, entry.Kind)
	assert.True(t, entry.OccurredAt.IsZero())
}

func TestLedgerEntryBeforeCreate(t *testing.T) {
	db := openTestDB(t)
	farmer := Farmer{DealerID: 1, FullName: "Ravi"}
	require.NoError(t, db.Create(&farmer).Error)

	entry := LedgerEntry{FarmerID: farmer.ID, DealerID: 1, Amount: decimal.NewFromInt(100), Kind: KindCreditGiven}
	require.NoError(t, db.Create(&entry).Error)
	assert.Len(t, entry.ID, 36)
	assert.Equal(t, StatusActive, entry.Status)
}

func TestStatement(t *testing.T) {
	db := openTestDB(t)
	farmer := Farmer{DealerID: 1, FullName: "Lakshmi", Mobile: "9000000001"}
	require.NoError(t, db.Create(&farmer).Error)

	entries := []LedgerEntry{
		{FarmerID: farmer.ID, DealerID: 1, Amount: decimal.NewFromInt(5000), Kind: KindCreditGiven, OccurredAt: at(0)},
		{FarmerID: farmer.ID, DealerID: 1, Amount: decimal.NewFromInt(3000), Kind: KindCreditGiven, OccurredAt: at(40)},
		{FarmerID: farmer.ID, DealerID: 1, Amount: decimal.NewFromInt(6000), Kind: KindPaymentReceived, OccurredAt: at(45)},
		{FarmerID: farmer.ID, DealerID: 1, Amount: decimal.NewFromInt(9999), Kind: KindCreditGiven, Status: StatusDisputed, OccurredAt: at(46)},
	}
	require.NoError(t, db.Create(&entries).Error)

	statement, err := Statement(db, 1, farmer.ID, Analytics.DefaultReminderPolicy(), *at(80))
	require.NoError(t, err)
	assert.True(t, statement.Balance.Equal(decimal.NewFromInt(2000)), statement.Balance.String())
	assert.True(t, statement.Aging.Days30.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, "Lakshmi", statement.Farmer.FullName)

	_, err = Statement(db, 2, farmer.ID, Analytics.DefaultReminderPolicy(), *at(80))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "farmers of another dealer are not visible")
}

func TestLoadDealerData(t *testing.T) {
	db := openTestDB(t)

	sickle := Product{Name: "Sickle", CategoryID: "tools"}
	urea := Product{Name: "Urea", CategoryID: "fertilizer", TargetCrops: datatypes.JSON(`["Paddy"]`)}
	require.NoError(t, db.Create(&sickle).Error)
	require.NoError(t, db.Create(&urea).Error)

	mine := Farmer{DealerID: 1, FullName: "Ravi", PrimaryCrop: "Paddy"}
	other := Farmer{DealerID: 2, FullName: "Other"}
	require.NoError(t, db.Create(&mine).Error)
	require.NoError(t, db.Create(&other).Error)
	require.NoError(t, db.Create(&FarmPlot{FarmerID: mine.ID, Acreage: 2, PlantType: "Paddy", PlantedAt: at(0)}).Error)
	require.NoError(t, db.Create(&FarmPlot{FarmerID: other.ID, Acreage: 9}).Error)

	listing := Listing{ProductID: urea.ID, VendorID: 1, Price: decimal.NewFromInt(300)}
	require.NoError(t, db.Create(&listing).Error)
	order := Order{FarmerID: mine.ID, TotalAmount: decimal.NewFromInt(600), PlacedAt: *at(5)}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&OrderLineItem{OrderID: order.ID, ListingID: listing.ID, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(300)}).Error)
	require.NoError(t, db.Create(&InventorySignal{DealerID: 1, ProductID: urea.ID, StockQuantity: 4, IsAvailable: true}).Error)
	require.NoError(t, db.Create(&InventorySignal{DealerID: 2, ProductID: urea.ID, StockQuantity: 40, IsAvailable: true}).Error)

	data, err := LoadDealerData(db, 1)
	require.NoError(t, err)
	require.Len(t, data.Farmers, 1)
	assert.Equal(t, "Ravi", data.Farmers[0].FullName)
	assert.Len(t, data.Plots, 1)
	assert.Len(t, data.Orders, 1)
	assert.Len(t, data.Items, 1)
	assert.Len(t, data.Signals, 1)
	assert.Equal(t, []string{"Paddy"}, data.Crops)

	require.Len(t, data.Products, 2)
	assert.Equal(t, "Urea", data.Products[0].Name, "crop-targeted products come first")
}

func TestLoadDealerData_PrefersSoilTargetedProducts(t *testing.T) {
	db := openTestDB(t)

	sickle := Product{Name: "Sickle", CategoryID: "tools"}
	gypsum := Product{Name: "Gypsum", CategoryID: "amendment", TargetSoils: datatypes.JSON(`["Black Cotton"]`)}
	require.NoError(t, db.Create(&sickle).Error)
	require.NoError(t, db.Create(&gypsum).Error)

	farmer := Farmer{DealerID: 1, FullName: "Ravi"}
	require.NoError(t, db.Create(&farmer).Error)
	require.NoError(t, db.Create(&FarmPlot{FarmerID: farmer.ID, Acreage: 3, SoilType: "black cotton"}).Error)

	assert.True(t, gypsum.TargetsSoil("BLACK COTTON"))
	assert.False(t, gypsum.TargetsSoil("Red"))
	assert.False(t, sickle.TargetsSoil("black cotton"))

	data, err := LoadDealerData(db, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"black cotton"}, data.Soils)
	assert.Empty(t, data.Crops)
	require.Len(t, data.Products, 2)
	assert.Equal(t, "Gypsum", data.Products[0].Name)
	assert.Equal(t, "Sickle", data.Products[1].Name)
}
