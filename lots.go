package trader

import "github.com/thuva4/am-i-bad-trader/date"

// lot is an open FIFO slice of a buy, waiting to be consumed by sells.
type lot struct {
	actionID string
	day      date.Date
	quantity Quantity
	cost     Money // account currency for this slice
	fees     Money
}

// RoundTrip is one FIFO-matched buy/sell pair. A sell larger than the
// oldest lot produces several round trips; a sell smaller than the lot
// splits it and leaves the rest open.
type RoundTrip struct {
	Instrument  string
	BuyID       string
	SellID      string
	BuyDate     date.Date
	SellDate    date.Date
	Quantity    Quantity
	Cost        Money
	Proceeds    Money
	Fees        Money
	Net         Money
	NetReturn   Percent
	HoldingDays int
}

func (r RoundTrip) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("ticker", r.Instrument)
	w.Append("buy_id", r.BuyID)
	w.Append("sell_id", r.SellID)
	w.Append("buy_date", r.BuyDate)
	w.Append("sell_date", r.SellDate)
	w.Append("quantity", r.Quantity)
	w.Append("cost", r.Cost)
	w.Append("proceeds", r.Proceeds)
	w.Optional("fees", r.Fees)
	w.Append("net", r.Net)
	w.Append("net_return_pct", float64(r.NetReturn))
	w.Append("holding_days", r.HoldingDays)
	return w.MarshalJSON()
}

// MatchRoundTrips pairs one instrument's sells against its buys, first in
// first out. Trades must be chronological. Sell quantity with no remaining
// lot to consume is left unmatched; it surfaces as an oversell anomaly from
// the tracker, not here.
func MatchRoundTrips(instrument string, trades []*Action) []RoundTrip {
	var open []lot
	var out []RoundTrip
	for _, a := range trades {
		switch a.Kind {
		case KindBuy:
			open = append(open, lot{
				actionID: a.ID,
				day:      a.Date,
				quantity: a.Quantity,
				cost:     a.Total.Abs(),
				fees:     a.Fees.Abs(),
			})
		case KindSell:
			remaining := a.Quantity
			proceeds := a.Total.Abs()
			sellFees := a.Fees.Abs()
			for !remaining.IsZero() && len(open) > 0 {
				head := &open[0]
				matched := remaining
				if head.quantity.LessThan(matched) {
					matched = head.quantity
				}

				// pro-rata slices of the lot and of the sell
				lotShare := matched.Div(head.quantity)
				sellShare := matched.Div(a.Quantity)
				cost := head.cost.Mul(lotShare)
				got := proceeds.Mul(sellShare)
				fees := head.fees.Mul(lotShare).Add(sellFees.Mul(sellShare))

				net := got.Sub(cost).Sub(fees)
				var ret Percent
				if !cost.IsZero() {
					ret = Percent(100 * net.InexactFloat64() / cost.InexactFloat64())
				}
				out = append(out, RoundTrip{
					Instrument:  instrument,
					BuyID:       head.actionID,
					SellID:      a.ID,
					BuyDate:     head.day,
					SellDate:    a.Date,
					Quantity:    matched,
					Cost:        cost,
					Proceeds:    got,
					Fees:        fees,
					Net:         net,
					NetReturn:   ret,
					HoldingDays: a.Date.Sub(head.day),
				})

				head.quantity = head.quantity.Sub(matched)
				head.cost = head.cost.Sub(cost)
				head.fees = head.fees.Sub(head.fees.Mul(lotShare))
				remaining = remaining.Sub(matched)
				if head.quantity.IsZero() {
					open = open[1:]
				}
			}
		}
	}
	return out
}
