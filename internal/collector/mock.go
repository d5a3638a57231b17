package collector

import (
	"fmt"
	"time"

	"InvestSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// It implements both MarketFetcher and FxFetcher.
type MockFetcher struct {
	Rate        float64
	Quotes      map[string]model.PricePoint
	Closes      map[string][]model.DailyClose
	Overviews   map[string]model.Fundamentals
	FailTickers map[string]bool
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Quote(ticker string) (*model.PricePoint, error) {
	if m.FailTickers[ticker] {
		return nil, fmt.Errorf("mock: quote unavailable for %s", ticker)
	}
	if q, ok := m.Quotes[ticker]; ok {
		return &q, nil
	}
	return &model.PricePoint{Ticker: ticker, CurrentPrice: 100, PrevPrice: 100}, nil
}

func (m *MockFetcher) DailyCloses(ticker string, from time.Time) ([]model.DailyClose, error) {
	if m.FailTickers[ticker] {
		return nil, fmt.Errorf("mock: closes unavailable for %s", ticker)
	}
	if c, ok := m.Closes[ticker]; ok {
		return c, nil
	}
	return generateMockCloses(100, from), nil
}

func (m *MockFetcher) Fundamentals(ticker string) (*model.Fundamentals, error) {
	if m.FailTickers[ticker] {
		return nil, fmt.Errorf("mock: fundamentals unavailable for %s", ticker)
	}
	if f, ok := m.Overviews[ticker]; ok {
		return &f, nil
	}
	return &model.Fundamentals{Ticker: ticker, High52Week: 120, CurrentPrice: 100, DropFromHighPct: -16.67}, nil
}

func (m *MockFetcher) UsdKrwRate() (float64, error) {
	if m.Rate == 0 {
		return 0, fmt.Errorf("mock: fx rate unavailable")
	}
	return m.Rate, nil
}

func generateMockCloses(basePrice float64, from time.Time) []model.DailyClose {
	var closes []model.DailyClose
	for d, i := from, 0; !d.After(time.Now()); d, i = d.AddDate(0, 0, 1), i+1 {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		closes = append(closes, model.DailyClose{
			Date:  d,
			Close: basePrice * (1 + float64(i%20-10)*0.002),
		})
	}
	return closes
}
