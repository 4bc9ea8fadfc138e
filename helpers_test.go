package trader

import (
	"fmt"

	"github.com/thuva4/am-i-bad-trader/date"
)

// day is shorthand for dates in test fixtures.
func day(s string) date.Date { return date.MustParse(s) }

var actionSeq int

func nextID() string {
	actionSeq++
	return fmt.Sprintf("t-%04d", actionSeq)
}

func testBuy(on, ticker string, qty, price, total float64) Action {
	return Action{
		ID:         nextID(),
		Date:       day(on),
		Kind:       KindBuy,
		Instrument: ticker,
		Quantity:   Q(qty),
		Price:      price,
		Total:      M(total, "USD"),
	}
}

func testSell(on, ticker string, qty, price, total float64) Action {
	a := testBuy(on, ticker, qty, price, total)
	a.Kind = KindSell
	return a
}

// testInstrument builds an instrument whose adjusted closes run on
// consecutive calendar days starting at 'start'.
func testInstrument(ticker, start string, prices ...float64) *Instrument {
	ins := &Instrument{Ticker: ticker, Currency: "USD"}
	on := day(start)
	for i, p := range prices {
		ins.Prices.Append(on.Add(i), p)
	}
	return ins
}
