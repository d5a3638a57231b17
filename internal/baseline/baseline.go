// Package baseline derives multi-horizon percentage returns against the
// first trading day of a target calendar month.
package baseline

import (
	"errors"
	"math"
	"time"

	"InvestSentinel/internal/model"
)

// ErrNoData is returned when the supplied series is empty.
var ErrNoData = errors.New("baseline: empty price series")

// TargetYearMonth subtracts monthsBack whole months from today's calendar
// month, borrowing into the year as needed. monthsBack = 0 is the current
// month.
func TargetYearMonth(today time.Time, monthsBack int) (year, month int) {
	year = today.Year()
	month = int(today.Month()) - monthsBack
	for month <= 0 {
		month += 12
		year--
	}
	return year, month
}

// FirstTradingDay scans an ascending series for the earliest entry in the
// given (year, month). ok is false when the month has no trading day in the
// series.
func FirstTradingDay(series []model.DailyClose, year, month int) (model.DailyClose, bool) {
	for _, dc := range series {
		if dc.Date.Year() == year && int(dc.Date.Month()) == month {
			return dc, true
		}
	}
	return model.DailyClose{}, false
}

// Compute resolves each requested horizon against the series. The series
// must be in ascending date order; the latest entry supplies the current
// price. Horizons whose target month has no trading day are left out of the
// result so callers see explicit absence instead of a wrong reference.
func Compute(ticker string, series []model.DailyClose, today time.Time, horizons []model.Horizon) (model.BaselineSet, error) {
	if len(series) == 0 {
		return model.BaselineSet{}, ErrNoData
	}

	current := series[len(series)-1].Close
	set := model.BaselineSet{
		Ticker:       ticker,
		CurrentPrice: round2(current),
		Periods:      make(map[model.Horizon]model.BaselinePeriod, len(horizons)),
	}

	for _, h := range horizons {
		year, month := TargetYearMonth(today, int(h))
		ref, ok := FirstTradingDay(series, year, month)
		if !ok || ref.Close == 0 {
			continue
		}
		set.Periods[h] = model.BaselinePeriod{
			Ticker:        ticker,
			Horizon:       h,
			BaselineDate:  ref.Date,
			BaselinePrice: round2(ref.Close),
			CurrentPrice:  round2(current),
			ChangePct:     round2((current - ref.Close) / ref.Close * 100),
		}
	}
	return set, nil
}

// Monthly is a convenience for the single horizon the ISA triggers use.
func Monthly(ticker string, series []model.DailyClose, today time.Time) (model.BaselinePeriod, bool) {
	set, err := Compute(ticker, series, today, []model.Horizon{model.HorizonMonthly})
	if err != nil {
		return model.BaselinePeriod{}, false
	}
	bp, ok := set.Periods[model.HorizonMonthly]
	return bp, ok
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
