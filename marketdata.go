package trader

import (
	"sort"

	"github.com/thuva4/am-i-bad-trader/date"
)

// PriceBar is one daily bar of an instrument's price series.
type PriceBar struct {
	Date     date.Date
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// DividendEvent is a cash dividend keyed by its ex-dividend date.
type DividendEvent struct {
	ExDate date.Date
	Amount float64
}

// SplitEvent is a share split. A 10-for-1 split has Numerator 10 and
// Denominator 1.
type SplitEvent struct {
	Date        date.Date
	Numerator   float64
	Denominator float64
}

// Ratio returns the split multiplier, 1 when the event is degenerate.
func (s SplitEvent) Ratio() float64 {
	if s.Numerator <= 0 || s.Denominator <= 0 {
		return 1
	}
	return s.Numerator / s.Denominator
}

// Instrument holds everything the market bundle knows about one ticker.
// Prices carries the adjusted close, which is what every window statistic
// reads; the raw bars are kept for reporting.
type Instrument struct {
	Ticker    string
	Currency  string
	Prices    date.History[float64]
	Bars      []PriceBar
	Dividends []DividendEvent
	Splits    []SplitEvent
}

// PriceOn returns the adjusted close on day, carrying back the previous
// close over weekends and holidays. ok is false before the series starts.
func (ins *Instrument) PriceOn(day date.Date) (price float64, ok bool) {
	return ins.Prices.ValueAsOf(day)
}

// SplitFactorAfter returns the product of the ratios of all splits strictly
// after day. Actions on the split date itself are already denominated in
// post-split shares.
func (ins *Instrument) SplitFactorAfter(day date.Date) float64 {
	f := 1.0
	for _, s := range ins.Splits {
		if s.Date.After(day) {
			f *= s.Ratio()
		}
	}
	return f
}

// DividendsBetween returns the dividend events with from <= ExDate <= to.
func (ins *Instrument) DividendsBetween(from, to date.Date) []DividendEvent {
	var out []DividendEvent
	for _, d := range ins.Dividends {
		if !d.ExDate.Before(from) && !d.ExDate.After(to) {
			out = append(out, d)
		}
	}
	return out
}

// MarketData is the decoded market bundle: one Instrument per ticker.
type MarketData struct {
	instruments map[string]*Instrument
}

// NewMarketData returns an empty bundle.
func NewMarketData() *MarketData {
	return &MarketData{instruments: make(map[string]*Instrument)}
}

// Add registers an instrument, replacing any previous one for the ticker.
func (m *MarketData) Add(ins *Instrument) { m.instruments[ins.Ticker] = ins }

// Get returns the instrument for ticker, nil when the bundle has none.
func (m *MarketData) Get(ticker string) *Instrument { return m.instruments[ticker] }

// Has reports whether the bundle covers ticker.
func (m *MarketData) Has(ticker string) bool { return m.instruments[ticker] != nil }

// Tickers returns all covered tickers in lexical order.
func (m *MarketData) Tickers() []string {
	out := make([]string, 0, len(m.instruments))
	for t := range m.instruments {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
