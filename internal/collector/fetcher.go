package collector

import (
	"time"

	"InvestSentinel/internal/model"
)

// MarketFetcher supplies quote, history, and fundamentals data. A nil-data
// error from any call means the observation is absent for this run.
type MarketFetcher interface {
	Quote(ticker string) (*model.PricePoint, error)
	DailyCloses(ticker string, from time.Time) ([]model.DailyClose, error)
	Fundamentals(ticker string) (*model.Fundamentals, error)
	Name() string
}

// FxFetcher supplies the USD/KRW exchange rate.
type FxFetcher interface {
	UsdKrwRate() (float64, error)
}
