package collector

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InvestSentinel/internal/config"
	"InvestSentinel/internal/model"
)

func testWatchlist() []config.WatchlistEntry {
	return []config.WatchlistEntry{
		{Ticker: "360750.KS", Name: "TIGER S&P500", Type: config.AssetCore, Shares: 100, Currency: "KRW", MonthlyTrigger: true},
		{Ticker: "QCOM", Type: config.AssetConditional, Shares: 10, Currency: "USD",
			BuyCondition: &config.BuyCondition{PERMax: 25, DropPctMin: 15}},
	}
}

func TestSnapshot_CollectsPerAssetType(t *testing.T) {
	mock := &MockFetcher{Rate: 1350}
	c := NewCollector(mock, mock, testWatchlist(), zerolog.Nop())

	snap := c.Snapshot(time.Date(2025, 3, 15, 7, 0, 0, 0, time.UTC))

	require.NotNil(t, snap.FxRate)
	assert.Equal(t, 1350.0, *snap.FxRate)
	assert.Empty(t, snap.Failures)

	assert.Contains(t, snap.Quotes, "360750.KS")
	assert.Contains(t, snap.Quotes, "QCOM")

	// Core tickers get baselines, conditional tickers get fundamentals.
	set, ok := snap.Baselines["360750.KS"]
	require.True(t, ok)
	assert.Contains(t, set.Periods, model.HorizonMonthly)
	assert.NotContains(t, snap.Baselines, "QCOM")

	fund, ok := snap.Fundamentals["QCOM"]
	require.True(t, ok)
	assert.Equal(t, "QCOM", fund.Ticker)
	assert.NotContains(t, snap.Fundamentals, "360750.KS")
}

func TestSnapshot_FailureBecomesAbsence(t *testing.T) {
	mock := &MockFetcher{Rate: 1350, FailTickers: map[string]bool{"QCOM": true}}
	c := NewCollector(mock, mock, testWatchlist(), zerolog.Nop())

	snap := c.Snapshot(time.Now())

	assert.NotContains(t, snap.Quotes, "QCOM")
	assert.NotContains(t, snap.Fundamentals, "QCOM")
	assert.Contains(t, snap.Failures, "QCOM quote lookup failed")
	assert.Contains(t, snap.Failures, "QCOM fundamentals lookup failed")

	// The other ticker is unaffected.
	assert.Contains(t, snap.Quotes, "360750.KS")
	assert.Contains(t, snap.Baselines, "360750.KS")
}

func TestSnapshot_FxFailure(t *testing.T) {
	mock := &MockFetcher{} // Rate zero makes the fx fetch fail
	c := NewCollector(mock, mock, testWatchlist(), zerolog.Nop())

	snap := c.Snapshot(time.Now())

	assert.Nil(t, snap.FxRate)
	assert.Contains(t, snap.Failures, "USD/KRW rate lookup failed")
	// Market data collection still proceeds.
	assert.Contains(t, snap.Quotes, "360750.KS")
}

func TestHoldings_SkipsZeroSharesAndMissingQuotes(t *testing.T) {
	watchlist := append(testWatchlist(),
		config.WatchlistEntry{Ticker: "SPY", Type: config.AssetCore, Shares: 0, Currency: "USD"})
	mock := &MockFetcher{Rate: 1350, FailTickers: map[string]bool{"QCOM": true}}
	c := NewCollector(mock, mock, watchlist, zerolog.Nop())

	snap := c.Snapshot(time.Now())
	holdings := c.Holdings(snap)

	require.Len(t, holdings, 1)
	assert.Equal(t, "360750.KS", holdings[0].Ticker)
	assert.Equal(t, 100.0, holdings[0].Shares)
	assert.Equal(t, "KRW", holdings[0].Currency)
}

func TestFxRate_Passthrough(t *testing.T) {
	mock := &MockFetcher{Rate: 1402.5}
	c := NewCollector(mock, mock, nil, zerolog.Nop())

	rate, err := c.FxRate()
	require.NoError(t, err)
	assert.Equal(t, 1402.5, rate)
}

func TestCallCounter(t *testing.T) {
	q := NewCallCounter(3, zerolog.Nop())

	assert.Equal(t, 2, q.Inc())
	assert.Equal(t, 1, q.Inc())
	assert.False(t, q.Exhausted())
	assert.Equal(t, 0, q.Inc())
	assert.True(t, q.Exhausted())
	assert.Equal(t, 3, q.Used())
}

func TestParseFloat_SentinelValues(t *testing.T) {
	assert.Nil(t, parseFloat(""))
	assert.Nil(t, parseFloat("None"))
	assert.Nil(t, parseFloat("-"))
	assert.Nil(t, parseFloat("not a number"))

	v := parseFloat("25.73")
	require.NotNil(t, v)
	assert.Equal(t, 25.73, *v)
}

func TestDropFromHigh(t *testing.T) {
	assert.Equal(t, -16.67, dropFromHigh(100, 120))
	assert.Equal(t, 0.0, dropFromHigh(100, 0))
	assert.Equal(t, 0.0, dropFromHigh(0, 120))
}
