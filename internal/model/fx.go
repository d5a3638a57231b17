package model

// Zone identifies one of the five USD/KRW conversion bands.
type Zone string

const (
	ZoneBulkConvert Zone = "bulk_convert"
	ZoneFullConvert Zone = "full_convert"
	ZoneNormal      Zone = "normal"
	ZoneHalfPause   Zone = "half_pause"
	ZoneFullPause   Zone = "full_pause"
)

// FxZoneResult classifies the current exchange rate into a conversion band.
type FxZoneResult struct {
	Zone         Zone
	ZoneName     string
	Action       string
	CurrentRate  float64
	Baseline     float64
	DiffBaseline float64 // signed, CurrentRate - Baseline
}

// FxZoneChange records a band transition between two observations.
type FxZoneChange struct {
	PrevZone     Zone
	PrevZoneName string
	Zone         Zone
	ZoneName     string
	PrevRate     float64
	CurrentRate  float64
	Action       string
}
