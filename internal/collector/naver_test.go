package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InvestSentinel/internal/model"
)

const naverPayload = `[['날짜', '시가', '고가', '저가', '종가', '거래량', '외국인소진율'],
['20250303', 19800, 19950, 19700, 19900, 123456, 1.23],
['20250304', 19900, 20100, 19850, 20000, 98765, 1.25],
['20250305', 20000, 20050, 19600, 19650, 112233, 1.21]]`

func TestParseNaverDaily(t *testing.T) {
	closes, err := parseNaverDaily([]byte(naverPayload))
	require.NoError(t, err)

	require.Len(t, closes, 3)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), closes[0].Date)
	assert.Equal(t, 19900.0, closes[0].Close)
	assert.Equal(t, 19650.0, closes[2].Close)
}

func TestParseNaverDaily_Garbage(t *testing.T) {
	_, err := parseNaverDaily([]byte("<html>blocked</html>"))
	assert.Error(t, err)
}

func TestKrSymbol(t *testing.T) {
	assert.Equal(t, "360750", krSymbol("360750.KS"))
	assert.Equal(t, "360750", krSymbol("360750.KRX"))
	assert.Equal(t, "QCOM", krSymbol("QCOM"))
}

func TestRoutingFetcher(t *testing.T) {
	korean := &MockFetcher{Quotes: map[string]model.PricePoint{
		"360750.KS": {Ticker: "360750.KS", CurrentPrice: 19900},
	}}
	def := &MockFetcher{Quotes: map[string]model.PricePoint{
		"QCOM": {Ticker: "QCOM", CurrentPrice: 155.4},
	}}
	r := &RoutingFetcher{Korean: korean, Default: def}

	assert.True(t, IsKoreanTicker("360750.KS"))
	assert.True(t, IsKoreanTicker("005930.KRX"))
	assert.False(t, IsKoreanTicker("QCOM"))

	q, err := r.Quote("360750.KS")
	require.NoError(t, err)
	assert.Equal(t, 19900.0, q.CurrentPrice)

	q, err = r.Quote("QCOM")
	require.NoError(t, err)
	assert.Equal(t, 155.4, q.CurrentPrice)

	// Fundamentals always hit the default source.
	f, err := r.Fundamentals("QCOM")
	require.NoError(t, err)
	assert.Equal(t, "QCOM", f.Ticker)
}
