package model

import "time"

// DailyClose is a single (trading day, closing price) observation.
type DailyClose struct {
	Date  time.Time
	Close float64
}

// PricePoint holds a ticker's current price against its prior close.
// Built fresh each run from gateway data, never persisted.
type PricePoint struct {
	Ticker       string
	CurrentPrice float64
	PrevPrice    float64
	ChangePct    float64 // (current-prev)/prev*100, rounded to 2 decimals
}

// Horizon expresses a baseline lookback in whole months. Zero means the
// first trading day of the current calendar month.
type Horizon int

const (
	HorizonMonthly Horizon = 0
	Horizon3Month  Horizon = 3
	Horizon6Month  Horizon = 6
	Horizon1Year   Horizon = 12
)

// StandardHorizons is the set tracked for core/index tickers.
var StandardHorizons = []Horizon{HorizonMonthly, Horizon3Month, Horizon6Month, Horizon1Year}

// Label returns the report label for a horizon.
func (h Horizon) Label() string {
	switch h {
	case HorizonMonthly:
		return "monthly"
	case Horizon3Month:
		return "3month"
	case Horizon6Month:
		return "6month"
	case Horizon1Year:
		return "1year"
	default:
		return "custom"
	}
}

// BaselinePeriod compares the latest close against the first trading day of
// a target month.
type BaselinePeriod struct {
	Ticker        string
	Horizon       Horizon
	BaselineDate  time.Time
	BaselinePrice float64
	CurrentPrice  float64
	ChangePct     float64 // rounded to 2 decimals
}

// BaselineSet maps each requested horizon to its result. A horizon with no
// trading day in the target month is not present in the map; callers must
// treat absence as insufficient data, not zero change.
type BaselineSet struct {
	Ticker       string
	CurrentPrice float64
	Periods      map[Horizon]BaselinePeriod
}
