// Package risk holds the pure sizing functions and the margin engine.
package risk

import "math"

// PerUnit is the loss per unit if the stop is hit.
func PerUnit(entry, stop float64) float64 {
	return math.Abs(entry - stop)
}

// QtyFromRisk sizes a position so that hitting the stop loses riskPct
// percent of capital, fee-adjusted. Returns 0 when entry equals stop.
func QtyFromRisk(capital, riskPct, entry, stop, feeRate float64) float64 {
	perUnit := PerUnit(entry, stop)
	if perUnit == 0 {
		return 0
	}
	riskCapital := capital * riskPct / 100
	return riskCapital / (perUnit * (1 + feeRate))
}

// RoundToLot rounds a quantity down to the instrument's minimum
// tradeable increment. A zero lot size leaves the quantity untouched.
func RoundToLot(qty, lotSize float64) float64 {
	if lotSize <= 0 {
		return qty
	}
	return math.Floor(qty/lotSize) * lotSize
}
