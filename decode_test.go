package trader

import (
	"strings"
	"testing"
)

const actionsFixture = `{
  "actions": [
    {"date": "2025-02-01", "action": "SELL", "ticker": "AAPL", "quantity": 5, "price": 210.5, "total": 1052.5, "currency": "USD"},
    {"date": "2025-01-15", "action": "BUY", "ticker": "AAPL", "quantity": 10, "price": 200, "total": 2000, "fees": 1.5, "currency": "USD", "trade_currency": "USD", "isin": "US0378331005"},
    {"date": "2025-01-15", "action": "HOUSEKEEPING", "total": 0, "currency": "USD"},
    {"date": "2025-01-10", "action": "DEPOSIT", "total": 5000, "currency": "USD"}
  ]
}`

func TestDecodeActions(t *testing.T) {
	actions, err := DecodeActions(strings.NewReader(actionsFixture))
	if err != nil {
		t.Fatalf("DecodeActions() failed: %v", err)
	}
	if got, want := len(actions), 4; got != want {
		t.Fatalf("len(actions) = %d, want %d", got, want)
	}
	// chronological after decode
	for i := 1; i < len(actions); i++ {
		if actions[i].Date.Before(actions[i-1].Date) {
			t.Fatalf("actions out of order: %s before %s", actions[i].Date, actions[i-1].Date)
		}
	}
	if got, want := actions[0].Kind, KindDeposit; got != want {
		t.Errorf("actions[0].Kind = %v, want %v", got, want)
	}
	buy := actions[1]
	if got, want := buy.Kind, KindBuy; got != want {
		t.Fatalf("actions[1].Kind = %v, want %v", got, want)
	}
	if got, want := buy.Quantity.InexactFloat64(), 10.0; got != want {
		t.Errorf("Quantity = %v, want %v", got, want)
	}
	if got, want := buy.Total.Currency(), "USD"; got != want {
		t.Errorf("Total currency = %q, want %q", got, want)
	}
	if got, want := buy.ISIN, "US0378331005"; got != want {
		t.Errorf("ISIN = %q, want %q", got, want)
	}
	// ids are assigned from file position, before sorting
	if buy.ID == "" || buy.ID == actions[0].ID {
		t.Errorf("expected distinct assigned ids, got %q and %q", actions[0].ID, buy.ID)
	}
	// unknown action strings map to OTHER, never dropped
	if got, want := actions[2].Kind, KindOther; got != want {
		t.Errorf("actions[2].Kind = %v, want %v", got, want)
	}
	if got, want := AccountCurrency(actions), "USD"; got != want {
		t.Errorf("AccountCurrency() = %q, want %q", got, want)
	}
}

func TestDecodeActions_BadDate(t *testing.T) {
	_, err := DecodeActions(strings.NewReader(`{"actions":[{"date":"not-a-date","action":"BUY"}]}`))
	if err == nil {
		t.Fatal("DecodeActions() = nil error, want a parse failure at the boundary")
	}
}

const marketFixture = `{
  "data": {
    "AAPL": {
      "currency": "USD",
      "chart": {
        "prices": [
          {"date": "2025-01-02", "open": 187.1, "high": 188.4, "low": 183.9, "close": 185.6, "adjclose": 185.1, "volume": 82488700},
          {"date": "2025-01-03", "close": 186.2},
          {"date": "2025-01-04", "close": 0}
        ],
        "dividends": [{"date": "2025-02-09", "amount": 0.24}],
        "splits": [{"date": "2020-08-31", "numerator": 4, "denominator": 1}]
      }
    },
    "DELISTED": {"chart": {"prices": []}}
  }
}`

func TestDecodeMarketData(t *testing.T) {
	m, err := DecodeMarketData(strings.NewReader(marketFixture))
	if err != nil {
		t.Fatalf("DecodeMarketData() failed: %v", err)
	}
	aapl := m.Get("AAPL")
	if aapl == nil {
		t.Fatal("Get(AAPL) = nil")
	}
	if got, want := aapl.Currency, "USD"; got != want {
		t.Errorf("Currency = %q, want %q", got, want)
	}
	// adjclose preferred, close as fallback, zero-close bar dropped
	if got, want := aapl.Prices.Len(), 2; got != want {
		t.Fatalf("Prices.Len() = %d, want %d", got, want)
	}
	if price, ok := aapl.PriceOn(day("2025-01-02")); !ok || price != 185.1 {
		t.Errorf("PriceOn(2025-01-02) = %v, %v, want 185.1, true", price, ok)
	}
	if price, ok := aapl.PriceOn(day("2025-01-03")); !ok || price != 186.2 {
		t.Errorf("PriceOn(2025-01-03) = %v, %v, want the close fallback 186.2", price, ok)
	}
	if got, want := len(aapl.Dividends), 1; got != want {
		t.Errorf("len(Dividends) = %d, want %d", got, want)
	}
	if got, want := len(aapl.Splits), 1; got != want {
		t.Fatalf("len(Splits) = %d, want %d", got, want)
	}
	if got, want := aapl.Splits[0].Ratio(), 4.0; got != want {
		t.Errorf("Splits[0].Ratio() = %v, want %v", got, want)
	}

	// an empty instrument stays in the bundle as a known gap
	if !m.Has("DELISTED") {
		t.Error("Has(DELISTED) = false, want empty instruments kept")
	}
	if got, want := len(m.Tickers()), 2; got != want {
		t.Errorf("len(Tickers()) = %d, want %d", got, want)
	}
}

func TestInstrument_SplitFactorAfter(t *testing.T) {
	ins := &Instrument{Ticker: "X"}
	ins.Splits = []SplitEvent{
		{Date: day("2024-06-10"), Numerator: 10, Denominator: 1},
		{Date: day("2025-06-10"), Numerator: 2, Denominator: 1},
	}
	tests := []struct {
		on   string
		want float64
	}{
		{"2024-01-01", 20}, // both splits ahead
		{"2024-06-10", 2},  // same-day split does not apply
		{"2024-12-01", 2},
		{"2025-12-01", 1},
	}
	for _, tc := range tests {
		if got := ins.SplitFactorAfter(day(tc.on)); got != tc.want {
			t.Errorf("SplitFactorAfter(%s) = %v, want %v", tc.on, got, tc.want)
		}
	}
}
