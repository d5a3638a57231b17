// Package portfolio computes per-position and per-sector allocation
// percentages in KRW terms and checks them against configured limits.
package portfolio

import (
	"fmt"
	"sort"

	"InvestSentinel/internal/config"
	"InvestSentinel/internal/model"
)

// Compute values every holding and cash bucket in KRW at the supplied FX
// rate and derives the allocation snapshot. Pure computation over already
// materialized inputs; when total assets are zero every percentage is zero.
func Compute(holdings []model.Holding, cash []model.CashBalance, fxRate float64, limits config.Limits) model.PortfolioSnapshot {
	snap := model.PortfolioSnapshot{}

	sectorValues := make(map[string]float64)
	for _, h := range holdings {
		value := h.Shares * h.Price
		if h.Currency == "USD" {
			value *= fxRate
		}
		snap.TotalValueKRW += value
		snap.Positions = append(snap.Positions, model.AllocationEntry{
			Ticker:   h.Ticker,
			Name:     h.Name,
			Shares:   h.Shares,
			Price:    h.Price,
			ValueKRW: value,
		})
		if h.Sector != "" {
			sectorValues[h.Sector] += value
		}
	}

	for _, c := range cash {
		amount := c.Amount
		if c.Currency == "USD" {
			amount *= fxRate
		}
		snap.TotalCashKRW += amount
	}

	snap.TotalAssets = snap.TotalValueKRW + snap.TotalCashKRW
	if snap.TotalAssets == 0 {
		return snap
	}

	// Percentages stay unrounded so positions plus cash always reconcile to
	// 100%; display rounding belongs to the report layer.
	for i := range snap.Positions {
		snap.Positions[i].AllocationPct = snap.Positions[i].ValueKRW / snap.TotalAssets * 100
	}
	for sector, value := range sectorValues {
		snap.Sectors = append(snap.Sectors, model.SectorAllocation{
			Sector:        sector,
			ValueKRW:      value,
			AllocationPct: value / snap.TotalAssets * 100,
		})
	}
	sort.Slice(snap.Sectors, func(i, j int) bool { return snap.Sectors[i].Sector < snap.Sectors[j].Sector })
	snap.CashPct = snap.TotalCashKRW / snap.TotalAssets * 100

	snap.Warnings = evaluateLimits(&snap, limits)
	return snap
}

// evaluateLimits produces the warning list: sector caps, single-name caps,
// and the cash band. Cash emits at most one warning, low or high.
func evaluateLimits(snap *model.PortfolioSnapshot, limits config.Limits) []model.LimitWarning {
	var warnings []model.LimitWarning

	for _, sa := range snap.Sectors {
		cap, ok := limits.Sectors[sa.Sector]
		if !ok {
			continue
		}
		if sa.AllocationPct > cap {
			warnings = append(warnings, model.LimitWarning{
				Kind:       model.LimitSector,
				Message:    fmt.Sprintf("sector %s at %.1f%% exceeds %.0f%% cap", sa.Sector, sa.AllocationPct, cap),
				CurrentPct: sa.AllocationPct,
				LimitPct:   cap,
			})
		}
	}

	for _, pos := range snap.Positions {
		cap, ok := limits.Positions[pos.Ticker]
		if !ok {
			continue
		}
		if pos.AllocationPct > cap {
			warnings = append(warnings, model.LimitWarning{
				Kind:       model.LimitPosition,
				Message:    fmt.Sprintf("%s at %.1f%% exceeds %.0f%% cap", pos.Ticker, pos.AllocationPct, cap),
				CurrentPct: pos.AllocationPct,
				LimitPct:   cap,
			})
		}
	}

	switch {
	case snap.CashPct < limits.CashMin:
		warnings = append(warnings, model.LimitWarning{
			Kind:       model.LimitCashLow,
			Message:    fmt.Sprintf("cash at %.1f%% is below the %.0f%% minimum", snap.CashPct, limits.CashMin),
			CurrentPct: snap.CashPct,
			LimitPct:   limits.CashMin,
		})
	case snap.CashPct > limits.CashMax:
		warnings = append(warnings, model.LimitWarning{
			Kind:       model.LimitCashHigh,
			Message:    fmt.Sprintf("cash at %.1f%% is above the %.0f%% maximum", snap.CashPct, limits.CashMax),
			CurrentPct: snap.CashPct,
			LimitPct:   limits.CashMax,
		})
	}
	return warnings
}
