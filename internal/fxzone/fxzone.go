// Package fxzone classifies the USD/KRW exchange rate into one of five
// contiguous conversion bands and recommends an action for each.
package fxzone

import (
	"fmt"
	"math"

	"InvestSentinel/internal/config"
	"InvestSentinel/internal/model"
)

// zoneNames and zoneActions are display strings per band, low to high.
var zoneNames = map[model.Zone]string{
	model.ZoneBulkConvert: "bulk conversion opportunity",
	model.ZoneFullConvert: "full conversion zone",
	model.ZoneNormal:      "normal zone",
	model.ZoneHalfPause:   "conversion hold zone",
	model.ZoneFullPause:   "full pause zone",
}

var zoneActions = map[model.Zone]string{
	model.ZoneBulkConvert: "convert 50% of accumulated KRW in one batch",
	model.ZoneFullConvert: "convert the full monthly amount",
	model.ZoneNormal:      "regular scheduled conversion",
	model.ZoneHalfPause:   "hold conversion, accumulate KRW cash",
	model.ZoneFullPause:   "hold all funds in KRW",
}

// Classify resolves the rate into its band. The four boundaries are
// inclusive on the lower side; anything above full_pause falls into the
// open-ended top band. Rates must be positive and finite.
func Classify(rate float64, rules config.FxConfig) (model.FxZoneResult, error) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return model.FxZoneResult{}, fmt.Errorf("invalid fx rate: %v", rate)
	}

	z := rules.Zones
	var zone model.Zone
	switch {
	case rate <= z.BulkConvert:
		zone = model.ZoneBulkConvert
	case rate <= z.FullConvert:
		zone = model.ZoneFullConvert
	case rate <= z.NormalEnd:
		zone = model.ZoneNormal
	case rate <= z.FullPause:
		zone = model.ZoneHalfPause
	default:
		zone = model.ZoneFullPause
	}

	return model.FxZoneResult{
		Zone:         zone,
		ZoneName:     zoneNames[zone],
		Action:       zoneActions[zone],
		CurrentRate:  rate,
		Baseline:     rules.Baseline,
		DiffBaseline: rate - rules.Baseline,
	}, nil
}

// DetectChange compares two observations and reports a band transition,
// or nil when both rates sit in the same band.
func DetectChange(prevRate, currentRate float64, rules config.FxConfig) (*model.FxZoneChange, error) {
	prev, err := Classify(prevRate, rules)
	if err != nil {
		return nil, err
	}
	cur, err := Classify(currentRate, rules)
	if err != nil {
		return nil, err
	}
	if prev.Zone == cur.Zone {
		return nil, nil
	}
	return &model.FxZoneChange{
		PrevZone:     prev.Zone,
		PrevZoneName: prev.ZoneName,
		Zone:         cur.Zone,
		ZoneName:     cur.ZoneName,
		PrevRate:     prevRate,
		CurrentRate:  currentRate,
		Action:       cur.Action,
	}, nil
}
