package fxzone

import (
	"math"
	"testing"

	"InvestSentinel/internal/config"
	"InvestSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules() config.FxConfig {
	return config.FxConfig{
		Baseline: 1350,
		Zones: config.FxZones{
			BulkConvert: 1300,
			FullConvert: 1320,
			NormalEnd:   1380,
			FullPause:   1420,
		},
	}
}

func TestClassify_AllZones(t *testing.T) {
	tests := []struct {
		rate float64
		zone model.Zone
	}{
		{1250.0, model.ZoneBulkConvert},
		{1300.0, model.ZoneBulkConvert}, // boundary inclusive on the lower zone
		{1300.01, model.ZoneFullConvert},
		{1320.0, model.ZoneFullConvert},
		{1350.0, model.ZoneNormal},
		{1380.0, model.ZoneNormal},
		{1400.0, model.ZoneHalfPause},
		{1420.0, model.ZoneHalfPause},
		{1420.01, model.ZoneFullPause},
		{1500.0, model.ZoneFullPause},
	}
	for _, tt := range tests {
		res, err := Classify(tt.rate, testRules())
		require.NoError(t, err, "rate %.2f", tt.rate)
		assert.Equal(t, tt.zone, res.Zone, "rate %.2f", tt.rate)
	}
}

func TestClassify_NormalZoneScenario(t *testing.T) {
	res, err := Classify(1350.00, testRules())
	require.NoError(t, err)
	assert.Equal(t, model.ZoneNormal, res.Zone)
	assert.Equal(t, "regular scheduled conversion", res.Action)
	assert.InDelta(t, 0.0, res.DiffBaseline, 1e-9)
}

func TestClassify_InvalidRate(t *testing.T) {
	for _, rate := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Classify(rate, testRules())
		assert.Error(t, err, "rate %v", rate)
	}
}

func TestClassify_DiffFromBaseline(t *testing.T) {
	res, err := Classify(1400, testRules())
	require.NoError(t, err)
	assert.InDelta(t, 50.0, res.DiffBaseline, 1e-9)

	res, err = Classify(1290, testRules())
	require.NoError(t, err)
	assert.InDelta(t, -60.0, res.DiffBaseline, 1e-9)
}

func TestDetectChange(t *testing.T) {
	change, err := DetectChange(1350, 1360, testRules())
	require.NoError(t, err)
	assert.Nil(t, change, "same zone should report no change")

	change, err = DetectChange(1375, 1390, testRules())
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, model.ZoneNormal, change.PrevZone)
	assert.Equal(t, model.ZoneHalfPause, change.Zone)
	assert.Equal(t, zoneActions[model.ZoneHalfPause], change.Action)

	_, err = DetectChange(0, 1390, testRules())
	assert.Error(t, err)
}
