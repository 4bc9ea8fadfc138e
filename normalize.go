package trader

// AdjustForSplits rewrites trade actions that predate one or more share
// splits into post-split terms: quantity is multiplied by the cumulative
// split factor and the per-share price divided by it. The account-currency
// total is unchanged, so the money that actually moved is preserved.
//
// A split on the action's own date does not apply; brokers report same-day
// trades in post-split shares already.
func AdjustForSplits(actions []Action, market *MarketData) {
	for i := range actions {
		a := &actions[i]
		if !a.Kind.IsTrade() {
			continue
		}
		ins := market.Get(a.Instrument)
		if ins == nil {
			continue
		}
		f := ins.SplitFactorAfter(a.Date)
		if f == 1 {
			continue
		}
		a.OriginalQuantity = a.Quantity
		a.OriginalPrice = a.Price
		a.SplitFactor = f
		a.Quantity = a.Quantity.Mul(Q(f))
		a.Price = a.Price / f
	}
}

// tradeToAccount converts a trade-currency amount to the account currency
// using the action's divisor rate.
func tradeToAccount(amount, rate float64) float64 {
	if rate == 0 {
		rate = 1
	}
	return amount / rate
}

// AccountPrice returns the action's per-share price in the account currency.
func AccountPrice(a *Action) float64 {
	return tradeToAccount(a.Price, a.Rate())
}
