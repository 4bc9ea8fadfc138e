package trader

import (
	"sort"

	"github.com/thuva4/am-i-bad-trader/date"
)

// ActionKind is the closed set of portfolio action types produced by the
// ingestion normalizer. Anything the normalizer could not classify arrives
// as KindOther and never mutates portfolio state.
type ActionKind string

const (
	KindBuy        ActionKind = "BUY"
	KindSell       ActionKind = "SELL"
	KindDividend   ActionKind = "DIVIDEND"
	KindInterest   ActionKind = "INTEREST"
	KindDeposit    ActionKind = "DEPOSIT"
	KindWithdrawal ActionKind = "WITHDRAWAL"
	KindFee        ActionKind = "FEE"
	KindSplit      ActionKind = "SPLIT"
	KindTransfer   ActionKind = "TRANSFER"
	KindOther      ActionKind = "OTHER"
)

// ParseActionKind maps a string onto the closed kind set, falling back to
// KindOther for anything unrecognized.
func ParseActionKind(s string) ActionKind {
	switch ActionKind(s) {
	case KindBuy, KindSell, KindDividend, KindInterest, KindDeposit,
		KindWithdrawal, KindFee, KindSplit, KindTransfer:
		return ActionKind(s)
	default:
		return KindOther
	}
}

// IsTrade reports whether the kind moves shares.
func (k ActionKind) IsTrade() bool { return k == KindBuy || k == KindSell }

// Action is a single normalized portfolio action.
//
// Instrument is the canonical instrument key assigned at ingestion; the
// engine never re-derives it. Price is the per-share price in the trade
// currency; Total and Fees are in the account currency. ExchangeRate is a
// divisor: account = trade / rate, so a minor-unit quote like GBX against a
// GBP account carries rate 100.
type Action struct {
	ID            string
	Date          date.Date
	Kind          ActionKind
	Instrument    string
	Quantity      Quantity
	Price         float64
	Total         Money
	Fees          Money
	TradeCurrency string
	ExchangeRate  float64
	ISIN          string
	Notes         string

	// Set by AdjustForSplits when the action predates one or more splits.
	// The account-currency Total is never rewritten.
	SplitFactor      float64
	OriginalQuantity Quantity
	OriginalPrice    float64
}

// SplitAdjusted reports whether the normalizer rewrote this action.
func (a *Action) SplitAdjusted() bool { return a.SplitFactor != 0 && a.SplitFactor != 1 }

// Rate returns the exchange rate, defaulting to 1 when the upstream data
// carried none.
func (a *Action) Rate() float64 {
	if a.ExchangeRate == 0 {
		return 1
	}
	return a.ExchangeRate
}

// MarshalJSON keeps the wire field names of the ingestion normalizer so a
// report embeds actions in the same shape they arrived in.
func (a Action) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", a.ID)
	w.Append("date", a.Date)
	w.Append("action", a.Kind)
	w.Optional("ticker", a.Instrument)
	w.Append("quantity", a.Quantity)
	w.Append("price", a.Price)
	w.Append("total", a.Total)
	w.Optional("fees", a.Fees)
	w.Optional("trade_currency", a.TradeCurrency)
	w.Optional("exchange_rate", a.ExchangeRate)
	w.Optional("isin", a.ISIN)
	if a.SplitAdjusted() {
		w.Append("split_factor", a.SplitFactor)
		w.Append("quantity_original", a.OriginalQuantity)
		w.Append("price_original", a.OriginalPrice)
	}
	return w.MarshalJSON()
}

// SortActions orders actions chronologically. The sort is stable: actions
// sharing a date keep their original ingestion order, since intraday
// ordering is otherwise unknowable.
func SortActions(actions []Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Date.Before(actions[j].Date)
	})
}
