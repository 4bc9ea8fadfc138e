package trader

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/thuva4/am-i-bad-trader/date"
)

/*
	{
	    "data": {
	        "AAPL": {
	            "currency": "USD",
	            "chart": {
	                "prices":    [{"date": "2024-01-02", "open": 187.1, "close": 185.6, "adjclose": 185.1, "volume": 82488700}],
	                "dividends": [{"date": "2024-02-09", "amount": 0.24}],
	                "splits":    [{"date": "2020-08-31", "numerator": 4, "denominator": 1}]
	            }
	        }
	    }
	}
*/

// DecodeMarketData reads a market bundle. Instruments with an empty price
// series are kept: downstream code treats them as uncovered and records the
// gap instead of failing.
func DecodeMarketData(r io.Reader) (*MarketData, error) {
	var jobj any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("cannot decode market bundle: %w", err)
	}

	jdata, err := jsonpath.Get("$.data", jobj)
	if err != nil {
		return nil, fmt.Errorf("market bundle has no data object: %w", err)
	}
	byTicker, ok := jdata.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("market bundle data is not an object")
	}

	m := NewMarketData()
	for ticker, jins := range byTicker {
		ins, err := decodeInstrument(ticker, jins)
		if err != nil {
			return nil, fmt.Errorf("market bundle %q: %w", ticker, err)
		}
		m.Add(ins)
	}
	return m, nil
}

func decodeInstrument(ticker string, jins any) (*Instrument, error) {
	ins := &Instrument{Ticker: ticker}
	if jcur, err := jsonpath.Get("$.currency", jins); err == nil {
		ins.Currency, _ = jcur.(string)
	}

	for _, jrow := range jrows(jins, "$.chart.prices") {
		day, err := jdate(jrow, "date")
		if err != nil {
			return nil, fmt.Errorf("price bar: %w", err)
		}
		bar := PriceBar{
			Date:     day,
			Open:     jnum(jrow, "open"),
			High:     jnum(jrow, "high"),
			Low:      jnum(jrow, "low"),
			Close:    jnum(jrow, "close"),
			AdjClose: jnum(jrow, "adjclose"),
			Volume:   int64(jnum(jrow, "volume")),
		}
		if bar.AdjClose == 0 {
			bar.AdjClose = bar.Close
		}
		if bar.AdjClose == 0 {
			// a bar with no usable close is a data hole, skip it
			continue
		}
		ins.Bars = append(ins.Bars, bar)
		ins.Prices.Append(day, bar.AdjClose)
	}

	for _, jrow := range jrows(jins, "$.chart.dividends") {
		day, err := jdate(jrow, "date")
		if err != nil {
			return nil, fmt.Errorf("dividend: %w", err)
		}
		ins.Dividends = append(ins.Dividends, DividendEvent{ExDate: day, Amount: jnum(jrow, "amount")})
	}

	for _, jrow := range jrows(jins, "$.chart.splits") {
		day, err := jdate(jrow, "date")
		if err != nil {
			return nil, fmt.Errorf("split: %w", err)
		}
		den := jnum(jrow, "denominator")
		if den == 0 {
			den = 1
		}
		ins.Splits = append(ins.Splits, SplitEvent{Date: day, Numerator: jnum(jrow, "numerator"), Denominator: den})
	}
	return ins, nil
}

// jrows extracts a list at path, empty when absent or not a list.
func jrows(jobj any, path string) []any {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil
	}
	jlist, _ := jval.([]any)
	return jlist
}

// jnum reads a numeric field from a decoded JSON object, 0 when absent.
func jnum(jrow any, key string) float64 {
	jmap, ok := jrow.(map[string]any)
	if !ok {
		return 0
	}
	v, _ := jmap[key].(float64)
	return v
}

// jdate reads a date field from a decoded JSON object.
func jdate(jrow any, key string) (date.Date, error) {
	jmap, ok := jrow.(map[string]any)
	if !ok {
		return date.Date{}, fmt.Errorf("row is not an object")
	}
	s, ok := jmap[key].(string)
	if !ok {
		return date.Date{}, fmt.Errorf("missing %q field", key)
	}
	return date.Parse(s)
}
