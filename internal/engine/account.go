package engine

import "main/internal/risk"

// Account is the single exchange account of one run. Balance moves only
// when a round trip closes; margin is reserved at submission and
// released when the position closes or the entry is cancelled.
type Account struct {
	Balance    float64
	MarginUsed float64
}

func (e *Engine) accountView() risk.AccountView {
	return risk.AccountView{
		Balance:         e.account.Balance,
		MarginUsed:      e.account.MarginUsed,
		OpenOrdersValue: e.openOrdersValue(),
	}
}

func (e *Engine) openOrdersValue() float64 {
	total := 0.0
	for _, r := range e.routes {
		for _, o := range r.pendingEntry {
			total += o.Notional()
		}
		for _, o := range r.pendingExit {
			total += o.Notional()
		}
	}
	return total
}
