package engine

import (
	"math"

	"main/internal/model"
)

// Results summarizes one finished run.
type Results struct {
	StartBalance float64
	FinalBalance float64
	TotalPnL     float64

	Trades       []model.Trade
	TotalTrades  int
	WinRate      float64
	ProfitFactor float64

	// Canceled holds the legs dropped before filling, either by
	// ShouldCancelEntry or because the position closed under them.
	Canceled []model.Order
}

func (e *Engine) collectResults() *Results {
	res := &Results{
		StartBalance: e.cfg.Balance,
		FinalBalance: e.account.Balance,
	}

	for _, r := range e.routes {
		res.Trades = append(res.Trades, r.ledger.Trades()...)
		res.Canceled = append(res.Canceled, r.canceled...)
	}
	res.TotalTrades = len(res.Trades)

	var wins int
	var totalWin, totalLoss float64
	for _, t := range res.Trades {
		res.TotalPnL += t.PnL
		if t.PnL > 0 {
			wins++
			totalWin += t.PnL
		} else {
			totalLoss += -t.PnL
		}
	}

	if res.TotalTrades > 0 {
		res.WinRate = float64(wins) / float64(res.TotalTrades)
	}
	switch {
	case totalLoss > 0:
		res.ProfitFactor = totalWin / totalLoss
	case totalWin > 0:
		res.ProfitFactor = math.Inf(1)
	}

	return res
}
