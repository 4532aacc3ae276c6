package Models

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"AgriDealer/Analytics"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// The functions below are the only place where stored records become analytics
// values. Store metadata (gorm.Model, SyncStatus) stops here.

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (f Farmer) ToAnalytics() Analytics.Farmer {
	return Analytics.Farmer{
		ID:          idString(f.ID),
		FullName:    f.FullName,
		Mobile:      f.Mobile,
		Village:     f.Village,
		Mandal:      f.Mandal,
		District:    f.District,
		PrimaryCrop: f.PrimaryCrop,
	}
}

func (p FarmPlot) ToAnalytics() Analytics.FarmPlot {
	plot := Analytics.FarmPlot{
		ID:        idString(p.ID),
		FarmerID:  idString(p.FarmerID),
		Acreage:   p.Acreage,
		SoilType:  p.SoilType,
		PlantType: p.PlantType,
	}
	if p.PlantedAt != nil {
		plot.PlantedAt = *p.PlantedAt
	}
	return plot
}

// ToAnalytics maps the stored kind once. An unknown kind maps to an empty kind,
// which no calculation counts.
func (e LedgerEntry) ToAnalytics() Analytics.LedgerEntry {
	kind, ok := Analytics.ParseEntryKind(e.Kind)
	if !ok {
		log.Printf("Ledger entry %s has unknown kind %q, excluded from totals\n", e.ID, e.Kind)
	}
	entry := Analytics.LedgerEntry{
		ID:         e.ID,
		DebtorID:   idString(e.FarmerID),
		CreditorID: idString(e.DealerID),
		Amount:     e.Amount,
		Kind:       kind,
		Status:     Analytics.ParseEntryStatus(e.Status),
		Note:       e.Note,
	}
	if e.OccurredAt != nil {
		entry.OccurredAt = *e.OccurredAt
	}
	return entry
}

func (p Product) ToAnalytics() Analytics.Product {
	return Analytics.Product{ID: idString(p.ID), Name: p.Name, CategoryID: p.CategoryID}
}

func (l Listing) ToAnalytics() Analytics.Listing {
	return Analytics.Listing{ID: idString(l.ID), ProductID: idString(l.ProductID), VendorID: idString(l.VendorID)}
}

func (s InventorySignal) ToAnalytics() Analytics.InventorySignal {
	return Analytics.InventorySignal{
		DealerID:      idString(s.DealerID),
		ProductID:     idString(s.ProductID),
		StockQuantity: s.StockQuantity,
		ReorderLevel:  s.ReorderLevel,
		IsAvailable:   s.IsAvailable,
	}
}

func (o Order) ToAnalytics() Analytics.Order {
	return Analytics.Order{ID: o.ID, DebtorID: idString(o.FarmerID), TotalAmount: o.TotalAmount, PlacedAt: o.PlacedAt}
}

func (i OrderLineItem) ToAnalytics() Analytics.OrderLineItem {
	return Analytics.OrderLineItem{OrderID: i.OrderID, ListingID: idString(i.ListingID), Quantity: i.Quantity, UnitPrice: i.UnitPrice}
}

// mapAll converts a slice of records with their ToAnalytics method
func mapAll[R any, A any](records []R, convert func(R) A) []A {
	out := make([]A, 0, len(records))
	for _, r := range records {
		out = append(out, convert(r))
	}
	return out
}

// FarmerLedger loads a farmer and every ledger entry on their account
func FarmerLedger(db *gorm.DB, dealerID, farmerID uint) (Farmer, []LedgerEntry, error) {
	var farmer Farmer
	if err := db.Where("dealer_id = ?", dealerID).First(&farmer, farmerID).Error; err != nil {
		return farmer, nil, fmt.Errorf("loading farmer %d: %w", farmerID, err)
	}
	var entries []LedgerEntry
	if err := db.Where("farmer_id = ?", farmerID).Order("occurred_at, created_at").Find(&entries).Error; err != nil {
		return farmer, nil, fmt.Errorf("loading ledger for farmer %d: %w", farmerID, err)
	}
	return farmer, entries, nil
}

// Statement computes a farmer's balance, aging and reminder advice as of now
func Statement(db *gorm.DB, dealerID, farmerID uint, policy Analytics.ReminderPolicy, now time.Time) (Analytics.Statement, error) {
	farmer, entries, err := FarmerLedger(db, dealerID, farmerID)
	if err != nil {
		return Analytics.Statement{}, err
	}
	return policy.BuildStatement(farmer.ToAnalytics(), mapAll(entries, LedgerEntry.ToAnalytics), now), nil
}

// DealerData is every collection the dealer-level analytics need, already mapped
type DealerData struct {
	Farmers  []Analytics.Farmer
	Plots    []Analytics.FarmPlot
	Products []Analytics.Product
	Listings []Analytics.Listing
	Signals  []Analytics.InventorySignal
	Orders   []Analytics.Order
	Items    []Analytics.OrderLineItem
	// Crops grown by the dealer's farmers, from plots and primary crops
	Crops []string
	// Soil types of the dealer's plots
	Soils []string
}

// LoadDealerData fetches a dealer's farmers, plots, orders and catalog in one go.
// Products that target the dealer's crops or soils are listed first so forecast rules prefer them.
func LoadDealerData(db *gorm.DB, dealerID uint) (DealerData, error) {
	var data DealerData

	var farmers []Farmer
	if err := db.Where("dealer_id = ?", dealerID).Order("id").Find(&farmers).Error; err != nil {
		return data, fmt.Errorf("loading farmers: %w", err)
	}
	farmerIDs := make([]uint, 0, len(farmers))
	crops := map[string]bool{}
	for _, f := range farmers {
		farmerIDs = append(farmerIDs, f.ID)
		if f.PrimaryCrop != "" {
			crops[f.PrimaryCrop] = true
		}
	}

	var plots []FarmPlot
	var orders []Order
	var items []OrderLineItem
	if len(farmerIDs) > 0 {
		if err := db.Where("farmer_id IN ?", farmerIDs).Order("id").Find(&plots).Error; err != nil {
			return data, fmt.Errorf("loading plots: %w", err)
		}
		if err := db.Where("farmer_id IN ?", farmerIDs).Order("placed_at, id").Find(&orders).Error; err != nil {
			return data, fmt.Errorf("loading orders: %w", err)
		}
		orderIDs := make([]string, 0, len(orders))
		for _, o := range orders {
			orderIDs = append(orderIDs, o.ID)
		}
		if len(orderIDs) > 0 {
			if err := db.Where("order_id IN ?", orderIDs).Order("id").Find(&items).Error; err != nil {
				return data, fmt.Errorf("loading order items: %w", err)
			}
		}
	}
	soils := map[string]bool{}
	for _, p := range plots {
		if p.PlantType != "" {
			crops[p.PlantType] = true
		}
		if p.SoilType != "" {
			soils[p.SoilType] = true
		}
	}

	var listings []Listing
	if err := db.Order("id").Find(&listings).Error; err != nil {
		return data, fmt.Errorf("loading listings: %w", err)
	}
	var products []Product
	if err := db.Order("id").Find(&products).Error; err != nil {
		return data, fmt.Errorf("loading products: %w", err)
	}
	var signals []InventorySignal
	if err := db.Where("dealer_id = ?", dealerID).Find(&signals).Error; err != nil {
		return data, fmt.Errorf("loading inventory: %w", err)
	}

	for crop := range crops {
		data.Crops = append(data.Crops, crop)
	}
	slices.Sort(data.Crops)
	for soil := range soils {
		data.Soils = append(data.Soils, soil)
	}
	slices.Sort(data.Soils)
	products = preferTargeted(products, data.Crops, data.Soils)

	data.Farmers = mapAll(farmers, Farmer.ToAnalytics)
	data.Plots = mapAll(plots, FarmPlot.ToAnalytics)
	data.Products = mapAll(products, Product.ToAnalytics)
	data.Listings = mapAll(listings, Listing.ToAnalytics)
	data.Signals = mapAll(signals, InventorySignal.ToAnalytics)
	data.Orders = mapAll(orders, Order.ToAnalytics)
	data.Items = mapAll(items, OrderLineItem.ToAnalytics)
	return data, nil
}

// preferTargeted moves products that target one of the crops or soils to the front, keeping order otherwise
func preferTargeted(products []Product, crops, soils []string) []Product {
	targeted := make([]Product, 0, len(products))
	rest := make([]Product, 0, len(products))
	for _, p := range products {
		if slices.ContainsFunc(crops, p.TargetsCrop) || slices.ContainsFunc(soils, p.TargetsSoil) {
			targeted = append(targeted, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(targeted, rest...)
}

// Forecast runs the rule table against the dealer's plots and only the dealer's stock
func (d DealerData) Forecast(cfg Analytics.ForecastConfig, dealerID uint, weather Analytics.WeatherSnapshot, now time.Time) []Analytics.Prediction {
	cfg.DealerID = idString(dealerID)
	return Analytics.NewForecastEngine(cfg).Forecast(d.Plots, d.Products, d.Signals, weather, now)
}

// VendorSales loads a vendor's listings with the orders and lines that bought them since the given time
func VendorSales(db *gorm.DB, vendorID uint, since time.Time) ([]Analytics.Order, []Analytics.OrderLineItem, []Analytics.Listing, error) {
	var listings []Listing
	if err := db.Where("vendor_id = ?", vendorID).Order("id").Find(&listings).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("loading listings: %w", err)
	}
	if len(listings) == 0 {
		return nil, nil, nil, nil
	}
	listingIDs := make([]uint, 0, len(listings))
	for _, l := range listings {
		listingIDs = append(listingIDs, l.ID)
	}

	var items []OrderLineItem
	if err := db.Where("listing_id IN ?", listingIDs).Order("id").Find(&items).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("loading order items: %w", err)
	}
	orderIDs := make([]string, 0, len(items))
	for _, i := range items {
		orderIDs = append(orderIDs, i.OrderID)
	}

	var orders []Order
	if len(orderIDs) > 0 {
		if err := db.Where("id IN ? AND placed_at >= ?", orderIDs, since).Order("placed_at").Find(&orders).Error; err != nil {
			return nil, nil, nil, fmt.Errorf("loading orders: %w", err)
		}
	}
	return mapAll(orders, Order.ToAnalytics), mapAll(items, OrderLineItem.ToAnalytics), mapAll(listings, Listing.ToAnalytics), nil
}
