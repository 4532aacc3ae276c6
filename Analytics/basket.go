package Analytics

import (
	"fmt"

	"golang.org/x/exp/slices"
)

const (
	bundleDiscountPct = 10.0
	maxBundles        = 5
)

// BundleOpportunity is a product pair worth selling together
type BundleOpportunity struct {
	ProductA             Product `json:"product_a"`
	ProductB             Product `json:"product_b"`
	Frequency            int     `json:"frequency"`
	OverlapPercent       float64 `json:"overlap_percent"`
	Overlap              string  `json:"overlap"`
	SuggestedDiscountPct float64 `json:"suggested_discount_pct"`
}

type productPair struct {
	a, b string
}

// pairOf orders the two IDs so (A,B) and (B,A) count as the same pair
func pairOf(x, y string) productPair {
	if y < x {
		x, y = y, x
	}
	return productPair{a: x, b: y}
}

// FindBundles mines product pairs that are often bought in the same order.
// When no pair is frequent enough it falls back to two products from the same category.
func FindBundles(orders []Order, items []OrderLineItem, listings []Listing, products []Product) []BundleOpportunity {
	productByID := make(map[string]Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}
	productOfListing := make(map[string]string, len(listings))
	for _, l := range listings {
		if _, ok := productByID[l.ProductID]; ok {
			productOfListing[l.ID] = l.ProductID
		}
	}

	itemsByOrder := make(map[string][]OrderLineItem)
	for _, item := range items {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	counts := make(map[productPair]int)
	var firstSeen []productPair
	multiItemBaskets := 0

	for _, order := range orders {
		var basket []string
		for _, item := range itemsByOrder[order.ID] {
			productID, ok := productOfListing[item.ListingID]
			if !ok || slices.Contains(basket, productID) {
				continue
			}
			basket = append(basket, productID)
		}
		if len(basket) < 2 {
			continue
		}
		multiItemBaskets++

		for i := 0; i < len(basket); i++ {
			for j := i + 1; j < len(basket); j++ {
				pair := pairOf(basket[i], basket[j])
				if _, ok := counts[pair]; !ok {
					firstSeen = append(firstSeen, pair)
				}
				counts[pair]++
			}
		}
	}

	minSupport := multiItemBaskets / 10
	if minSupport < 2 {
		minSupport = 2
	}

	bundles := []BundleOpportunity{}
	for _, pair := range firstSeen {
		freq := counts[pair]
		if freq < minSupport {
			continue
		}
		pct := float64(freq) / float64(multiItemBaskets) * 100
		bundles = append(bundles, BundleOpportunity{
			ProductA:             productByID[pair.a],
			ProductB:             productByID[pair.b],
			Frequency:            freq,
			OverlapPercent:       pct,
			Overlap:              fmt.Sprintf("%.0f%% of multi-item orders", pct),
			SuggestedDiscountPct: bundleDiscountPct,
		})
	}

	if len(bundles) == 0 {
		return coldStartBundle(products)
	}

	slices.SortStableFunc(bundles, func(x, y BundleOpportunity) int {
		return y.Frequency - x.Frequency
	})
	if len(bundles) > maxBundles {
		bundles = bundles[:maxBundles]
	}
	return bundles
}

// coldStartBundle pairs the first two products that share a category
func coldStartBundle(products []Product) []BundleOpportunity {
	firstInCategory := make(map[string]Product)
	for _, p := range products {
		if p.CategoryID == "" {
			continue
		}
		first, ok := firstInCategory[p.CategoryID]
		if !ok {
			firstInCategory[p.CategoryID] = p
			continue
		}
		if first.ID == p.ID {
			continue
		}
		return []BundleOpportunity{{
			ProductA:             first,
			ProductB:             p,
			Frequency:            0,
			Overlap:              "same category, no purchase history yet",
			SuggestedDiscountPct: bundleDiscountPct,
		}}
	}
	return []BundleOpportunity{}
}
