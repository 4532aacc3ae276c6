package Weather

import (
	"context"
	"hash/fnv"
	"time"

	"AgriDealer/Analytics"
)

// Provider returns current conditions and a short forecast for a district
type Provider interface {
	Snapshot(ctx context.Context, district string, date time.Time) (Analytics.WeatherSnapshot, error)
}

const forecastDays = 5

// MockProvider returns a seasonal snapshot without calling any service.
// Monsoon months (June to September) are rainy. Values vary a little by district
// and day so that repeated calls for the same inputs agree.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Snapshot(ctx context.Context, district string, date time.Time) (Analytics.WeatherSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return Analytics.WeatherSnapshot{}, err
	}
	today := day(district, date)
	for i := 1; i <= forecastDays; i++ {
		today.Forecast = append(today.Forecast, day(district, date.AddDate(0, 0, i)))
	}
	return today, nil
}

func day(district string, date time.Time) Analytics.WeatherSnapshot {
	h := fnv.New32a()
	h.Write([]byte(district))
	h.Write([]byte(date.Format("2006-01-02")))
	jitter := float64(h.Sum32()%100) / 100 // 0.00 - 0.99

	snapshot := Analytics.WeatherSnapshot{
		TempMax:     32 + 4*jitter,
		TempMin:     22 + 3*jitter,
		Humidity:    55 + 10*jitter,
		WindSpeedKm: 8 + 6*jitter,
	}
	if monsoon(date.Month()) {
		snapshot.RainfallMm = 8 + 20*jitter
		snapshot.Humidity += 25
		snapshot.TempMax -= 4
	} else {
		snapshot.RainfallMm = 2 * jitter
	}
	return snapshot
}

func monsoon(m time.Month) bool {
	return m >= time.June && m <= time.September
}
