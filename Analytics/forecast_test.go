package Analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var forecastNow = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func plot(id string, acreage float64, yearsAgo int) FarmPlot {
	p := FarmPlot{ID: id, FarmerID: "f-1", Acreage: acreage, PlantType: "oil palm"}
	if yearsAgo >= 0 {
		p.PlantedAt = forecastNow.AddDate(-yearsAgo, 0, 0)
	}
	return p
}

var catalog = []Product{
	{ID: "p-urea", Name: "Urea 45kg", CategoryID: "fertilizer"},
	{ID: "p-sickle", Name: "Harvesting Sickle", CategoryID: "tools"},
	{ID: "p-boron", Name: "Boron 20%", CategoryID: "micronutrient"},
	{ID: "p-dap", Name: "DAP", CategoryID: "fertilizer"},
}

func predictionFor(preds []Prediction, rule string) (Prediction, bool) {
	for _, p := range preds {
		if p.Rule == rule {
			return p, true
		}
	}
	return Prediction{}, false
}

func TestForecast_CohortsAndRules(t *testing.T) {
	plots := []FarmPlot{
		plot("mature", 10, 6),
		plot("young", 4, 2),
		plot("undated", 100, -1),
	}
	preds := Forecast(plots, catalog, nil, WeatherSnapshot{}, forecastNow)
	require.Len(t, preds, 3)

	nitrogen, ok := predictionFor(preds, "nitrogen")
	require.True(t, ok)
	assert.Equal(t, "p-urea", nitrogen.ProductID)
	assert.InDelta(t, 25.0, nitrogen.PredictedQuantity, 1e-9)
	assert.InDelta(t, 0.7, nitrogen.Confidence, 1e-9)
	assert.Equal(t, "bags", nitrogen.Unit)
	assert.NotEmpty(t, nitrogen.Reasoning)

	tools, _ := predictionFor(preds, "harvesting-tool")
	assert.InDelta(t, 5.0, tools.PredictedQuantity, 1e-9)

	micro, _ := predictionFor(preds, "micronutrient")
	assert.InDelta(t, 4.0, micro.PredictedQuantity, 1e-9)
}

func TestForecast_MatureAcreageMonotonic(t *testing.T) {
	prev := 0.0
	for _, acres := range []float64{1, 2, 5, 5, 12.5} {
		preds := Forecast([]FarmPlot{plot("m", acres, 5)}, catalog, nil, WeatherSnapshot{}, forecastNow)
		nitrogen, ok := predictionFor(preds, "nitrogen")
		require.True(t, ok)
		assert.GreaterOrEqual(t, nitrogen.PredictedQuantity, prev)
		prev = nitrogen.PredictedQuantity
	}
}

func TestForecast_RainSurge(t *testing.T) {
	plots := []FarmPlot{plot("m", 8, 5)}

	dry, _ := predictionFor(Forecast(plots, catalog, nil, WeatherSnapshot{RainfallMm: 1}, forecastNow), "nitrogen")
	wetToday, _ := predictionFor(Forecast(plots, catalog, nil, WeatherSnapshot{RainfallMm: 12}, forecastNow), "nitrogen")
	wetSoon, _ := predictionFor(Forecast(plots, catalog, nil, WeatherSnapshot{
		Forecast: []WeatherSnapshot{{RainfallMm: 0}, {RainfallMm: 30}},
	}, forecastNow), "nitrogen")

	assert.Greater(t, wetToday.PredictedQuantity, dry.PredictedQuantity)
	assert.Greater(t, wetToday.Confidence, dry.Confidence)
	assert.InDelta(t, wetToday.PredictedQuantity, wetSoon.PredictedQuantity, 1e-9)
	assert.InDelta(t, 24.0, wetToday.PredictedQuantity, 1e-9)
	assert.Contains(t, wetToday.Reasoning, "rain expected")

	beyondHorizon, _ := predictionFor(Forecast(plots, catalog, nil, WeatherSnapshot{
		Forecast: []WeatherSnapshot{{}, {}, {}, {RainfallMm: 40}},
	}, forecastNow), "nitrogen")
	assert.InDelta(t, dry.PredictedQuantity, beyondHorizon.PredictedQuantity, 1e-9)
}

func TestForecast_StockStatusAndOrdering(t *testing.T) {
	plots := []FarmPlot{plot("m", 10, 6), plot("g", 10, 1)}
	signals := []InventorySignal{
		{DealerID: "d-1", ProductID: "p-urea", StockQuantity: 30, IsAvailable: true},
		{DealerID: "d-1", ProductID: "p-sickle", StockQuantity: 1, IsAvailable: true},
		{DealerID: "d-1", ProductID: "p-boron", StockQuantity: 50, IsAvailable: false},
		{DealerID: "d-2", ProductID: "p-sickle", StockQuantity: 100, IsAvailable: true},
	}
	engine := NewForecastEngine(ForecastConfig{DealerID: "d-1"})
	preds := engine.Forecast(plots, catalog, signals, WeatherSnapshot{}, forecastNow)
	require.Len(t, preds, 3)

	// micronutrient: 10 needed, 0 usable stock; sickle: 5 needed, 1 in stock; urea: covered.
	assert.Equal(t, "micronutrient", preds[0].Rule)
	assert.Equal(t, StockCriticalOut, preds[0].StockStatus)
	assert.InDelta(t, 10.0, preds[0].Gap, 1e-9)

	assert.Equal(t, "harvesting-tool", preds[1].Rule)
	assert.Equal(t, StockLow, preds[1].StockStatus)
	assert.InDelta(t, 4.0, preds[1].Gap, 1e-9)

	assert.Equal(t, "nitrogen", preds[2].Rule)
	assert.Equal(t, StockOK, preds[2].StockStatus)
	assert.Zero(t, preds[2].Gap)
}

func TestForecast_NoPlotsOrProducts(t *testing.T) {
	assert.Empty(t, Forecast(nil, catalog, nil, WeatherSnapshot{}, forecastNow))
	assert.NotNil(t, Forecast(nil, nil, nil, WeatherSnapshot{}, forecastNow))
	assert.Empty(t, Forecast([]FarmPlot{plot("m", 10, 6)}, nil, nil, WeatherSnapshot{}, forecastNow))
}

func TestForecast_CustomRuleTable(t *testing.T) {
	specs, err := ParseRuleSpecs([]byte(`[
		// potash for every plot, doubled before rain
		{name: "potash", keywords: ["MOP", "potash"], cohort: "all", perArea: 1.5, unit: "bags",
		 baseConfidence: 0.5, rainSurge: 2, rainConfidence: 0.8},
	]`))
	require.NoError(t, err)
	rules, err := CompileRules(specs)
	require.NoError(t, err)

	products := []Product{{ID: "p-mop", Name: "Muriate of Potash (MOP)"}}
	engine := NewForecastEngine(ForecastConfig{Rules: rules})
	preds := engine.Forecast([]FarmPlot{plot("m", 2, 6), plot("g", 2, 1)}, products, nil, WeatherSnapshot{RainfallMm: 20}, forecastNow)
	require.Len(t, preds, 1)
	assert.InDelta(t, 12.0, preds[0].PredictedQuantity, 1e-9)
	assert.InDelta(t, 0.8, preds[0].Confidence, 1e-9)
}

func TestParseRuleSpecs_Invalid(t *testing.T) {
	_, err := ParseRuleSpecs([]byte(`[{name: "x", keywords: [], perArea: 1}]`))
	assert.Error(t, err)

	_, err = ParseRuleSpecs([]byte(`[{name: "x", keywords: ["a"], cohort: "seedling"}]`))
	assert.Error(t, err)

	_, err = ParseRuleSpecs([]byte(`not json`))
	assert.Error(t, err)
}
