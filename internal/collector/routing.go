package collector

import (
	"strings"
	"time"

	"InvestSentinel/internal/model"
)

// RoutingFetcher dispatches by market: Korean tickers (.KS/.KRX suffix) go
// to the Korean source, everything else to the default source. Fundamentals
// always route to the default source, the only one that serves them.
type RoutingFetcher struct {
	Korean  MarketFetcher
	Default MarketFetcher
}

// IsKoreanTicker reports whether a ticker carries a Korean exchange suffix.
func IsKoreanTicker(ticker string) bool {
	return strings.HasSuffix(ticker, ".KS") || strings.HasSuffix(ticker, ".KRX")
}

func (r *RoutingFetcher) pick(ticker string) MarketFetcher {
	if IsKoreanTicker(ticker) {
		return r.Korean
	}
	return r.Default
}

func (r *RoutingFetcher) Name() string {
	return r.Default.Name() + "+" + r.Korean.Name()
}

func (r *RoutingFetcher) Quote(ticker string) (*model.PricePoint, error) {
	return r.pick(ticker).Quote(ticker)
}

func (r *RoutingFetcher) DailyCloses(ticker string, from time.Time) ([]model.DailyClose, error) {
	return r.pick(ticker).DailyCloses(ticker, from)
}

func (r *RoutingFetcher) Fundamentals(ticker string) (*model.Fundamentals, error) {
	return r.Default.Fundamentals(ticker)
}
