package Analytics

import (
	"math"
	"time"

	"golang.org/x/exp/slices"
)

type StockStatus string

const (
	StockOK          StockStatus = "OK"
	StockLow         StockStatus = "LOW"
	StockCriticalOut StockStatus = "CRITICAL_OUT"
)

// Prediction is the expected demand for one product and how current stock covers it
type Prediction struct {
	ProductID         string      `json:"product_id"`
	ProductName       string      `json:"product_name"`
	Rule              string      `json:"rule"`
	PredictedQuantity float64     `json:"predicted_quantity"`
	Unit              string      `json:"unit"`
	Confidence        float64     `json:"confidence"`
	Reasoning         string      `json:"reasoning"`
	Stock             float64     `json:"stock"`
	StockStatus       StockStatus `json:"stock_status"`
	Gap               float64     `json:"gap"`
}

// ForecastConfig configures the demand forecast engine
type ForecastConfig struct {
	// DealerID restricts stock lookups to one dealer. Empty means all signals count.
	DealerID string

	// GestationYears is the plot age below which a plot is still in gestation.
	GestationYears int

	// RainThresholdMm is the rainfall above which rain is considered imminent.
	RainThresholdMm float64

	// RainHorizonDays is how many forecast days are checked for rain.
	// Unset falls back to three days.
	RainHorizonDays int

	Rules []ForecastRule
}

// DefaultForecastConfig returns the built-in rule table and thresholds
func DefaultForecastConfig() ForecastConfig {
	rules, _ := CompileRules(DefaultRuleSpecs())
	return ForecastConfig{
		GestationYears:  4,
		RainThresholdMm: 5,
		RainHorizonDays: 3,
		Rules:           rules,
	}
}

// ForecastEngine evaluates a rule table against plots, weather and stock
type ForecastEngine struct {
	cfg ForecastConfig
}

// NewForecastEngine fills in defaults for unset numeric fields
func NewForecastEngine(cfg ForecastConfig) *ForecastEngine {
	def := DefaultForecastConfig()
	if cfg.GestationYears <= 0 {
		cfg.GestationYears = def.GestationYears
	}
	if cfg.RainThresholdMm <= 0 {
		cfg.RainThresholdMm = def.RainThresholdMm
	}
	if cfg.RainHorizonDays <= 0 {
		cfg.RainHorizonDays = def.RainHorizonDays
	}
	if cfg.Rules == nil {
		cfg.Rules = def.Rules
	}
	return &ForecastEngine{cfg: cfg}
}

// Forecast predicts input demand with the default configuration
func Forecast(plots []FarmPlot, products []Product, signals []InventorySignal, weather WeatherSnapshot, now time.Time) []Prediction {
	return NewForecastEngine(DefaultForecastConfig()).Forecast(plots, products, signals, weather, now)
}

// Input aggregates plot acreage into cohorts and reads the rain signal
func (e *ForecastEngine) Input(plots []FarmPlot, weather WeatherSnapshot, now time.Time) ForecastInput {
	in := ForecastInput{Weather: weather, RainImminent: e.rainImminent(weather)}
	for _, plot := range plots {
		if plot.PlantedAt.IsZero() || plot.Acreage <= 0 {
			continue
		}
		if plot.PlantedAt.AddDate(e.cfg.GestationYears, 0, 0).After(now) {
			in.GestationArea += plot.Acreage
		} else {
			in.MatureArea += plot.Acreage
		}
	}
	return in
}

func (e *ForecastEngine) rainImminent(w WeatherSnapshot) bool {
	if w.RainfallMm > e.cfg.RainThresholdMm {
		return true
	}
	for i, day := range w.Forecast {
		if i >= e.cfg.RainHorizonDays {
			break
		}
		if day.RainfallMm > e.cfg.RainThresholdMm {
			return true
		}
	}
	return false
}

// Forecast runs every rule and returns predictions ordered by largest stock gap first
func (e *ForecastEngine) Forecast(plots []FarmPlot, products []Product, signals []InventorySignal, weather WeatherSnapshot, now time.Time) []Prediction {
	in := e.Input(plots, weather, now)
	stock := e.stockByProduct(signals)

	predictions := []Prediction{}
	for _, rule := range e.cfg.Rules {
		if rule.Match == nil || rule.Quantity == nil || rule.Confidence == nil || rule.Reasoning == nil {
			continue
		}
		idx := slices.IndexFunc(products, rule.Match)
		if idx < 0 {
			continue
		}
		product := products[idx]

		qty := rule.Quantity(in)
		if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
			continue
		}
		onHand := stock[product.ID]
		predictions = append(predictions, Prediction{
			ProductID:         product.ID,
			ProductName:       product.Name,
			Rule:              rule.Name,
			PredictedQuantity: qty,
			Unit:              rule.Unit,
			Confidence:        clamp01(rule.Confidence(in)),
			Reasoning:         rule.Reasoning(in, qty),
			Stock:             onHand,
			StockStatus:       classifyStock(onHand, qty),
			Gap:               math.Max(0, qty-onHand),
		})
	}

	slices.SortStableFunc(predictions, func(a, b Prediction) int {
		switch {
		case a.Gap > b.Gap:
			return -1
		case a.Gap < b.Gap:
			return 1
		}
		return 0
	})
	return predictions
}

func (e *ForecastEngine) stockByProduct(signals []InventorySignal) map[string]float64 {
	stock := make(map[string]float64)
	for _, s := range signals {
		if e.cfg.DealerID != "" && s.DealerID != e.cfg.DealerID {
			continue
		}
		if !s.IsAvailable || s.StockQuantity <= 0 {
			continue
		}
		stock[s.ProductID] += s.StockQuantity
	}
	return stock
}

func classifyStock(stock, predicted float64) StockStatus {
	switch {
	case stock <= 0:
		return StockCriticalOut
	case stock < 0.5*predicted:
		return StockLow
	}
	return StockOK
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
