package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InvestSentinel/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordRun(t *testing.T) {
	r := openTestRecorder(t)

	rec := &RunRecord{
		RanAt: time.Date(2025, 3, 15, 7, 0, 0, 0, time.UTC),
		Fx: &model.FxZoneResult{
			Zone: model.ZoneNormal, ZoneName: "normal zone", CurrentRate: 1350,
		},
		Triggers: model.TriggerReport{
			Buys: []model.BuyTrigger{
				{Ticker: "360750.KS", ChangePct: -11.2, Action: "commit 60% of reserve cash to additional purchase"},
			},
			Sells: []model.SellTrigger{
				{Ticker: "SPY", ChangePct: 21.0, Action: "liquidate half of current holdings (75 shares)"},
			},
		},
		Portfolio: &model.PortfolioSnapshot{
			TotalAssets: 11100000, TotalCashKRW: 2350000, CashPct: 21.17,
		},
		Failures:  []string{"OXY quote lookup failed"},
		Delivered: true,
	}
	require.NoError(t, r.RecordRun(rec))

	var runCount, triggerCount int
	require.NoError(t, r.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runCount))
	require.NoError(t, r.db.QueryRow("SELECT COUNT(*) FROM triggers").Scan(&triggerCount))
	assert.Equal(t, 1, runCount)
	assert.Equal(t, 2, triggerCount)

	var fxZone, failures string
	var buys int
	require.NoError(t, r.db.QueryRow("SELECT fx_zone, failures, buy_triggers FROM runs").Scan(&fxZone, &failures, &buys))
	assert.Equal(t, "normal", fxZone)
	assert.Equal(t, "OXY quote lookup failed", failures)
	assert.Equal(t, 1, buys)

	var category, ticker string
	require.NoError(t, r.db.QueryRow("SELECT category, ticker FROM triggers WHERE category = 'sell'").Scan(&category, &ticker))
	assert.Equal(t, "SPY", ticker)
}

func TestRecordRun_NilSections(t *testing.T) {
	r := openTestRecorder(t)

	require.NoError(t, r.RecordRun(&RunRecord{RanAt: time.Now()}))

	var fxRate any
	require.NoError(t, r.db.QueryRow("SELECT fx_rate FROM runs").Scan(&fxRate))
	assert.Nil(t, fxRate)
}

func TestRecordFxChange(t *testing.T) {
	r := openTestRecorder(t)

	require.NoError(t, r.RecordFxChange(&FxChangeRecord{
		ObservedAt: time.Now(),
		Change: model.FxZoneChange{
			PrevZone: model.ZoneNormal, Zone: model.ZoneHalfPause,
			PrevRate: 1370, CurrentRate: 1395,
			Action: "hold conversion, accumulate KRW cash",
		},
	}))

	var prevZone, zone string
	var rate float64
	require.NoError(t, r.db.QueryRow("SELECT prev_zone, zone, rate FROM fx_changes").Scan(&prevZone, &zone, &rate))
	assert.Equal(t, "normal", prevZone)
	assert.Equal(t, "half_pause", zone)
	assert.Equal(t, 1395.0, rate)
}
