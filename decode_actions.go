package trader

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/thuva4/am-i-bad-trader/date"
)

// actionDoc mirrors the JSON bundle emitted by the ingestion normalizer.
type actionDoc struct {
	Actions []struct {
		Date          string  `json:"date"`
		Action        string  `json:"action"`
		Ticker        string  `json:"ticker"`
		Quantity      float64 `json:"quantity"`
		Price         float64 `json:"price"`
		Total         float64 `json:"total"`
		Fees          float64 `json:"fees"`
		Currency      string  `json:"currency"`
		TradeCurrency string  `json:"trade_currency"`
		ExchangeRate  float64 `json:"exchange_rate"`
		ISIN          string  `json:"isin"`
		Notes         string  `json:"notes"`
	} `json:"actions"`
}

// DecodeActions reads a normalized action bundle and returns the actions in
// stable chronological order. Actions without an upstream id get one assigned
// from their position in the file, before sorting, so ids are reproducible
// across runs on the same input.
func DecodeActions(r io.Reader) ([]Action, error) {
	var doc actionDoc
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot decode actions: %w", err)
	}

	actions := make([]Action, 0, len(doc.Actions))
	for i, raw := range doc.Actions {
		day, err := date.Parse(raw.Date)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i+1, err)
		}
		actions = append(actions, Action{
			ID:            fmt.Sprintf("act-%04d", i+1),
			Date:          day,
			Kind:          ParseActionKind(raw.Action),
			Instrument:    raw.Ticker,
			Quantity:      Q(raw.Quantity),
			Price:         raw.Price,
			Total:         M(raw.Total, raw.Currency),
			Fees:          M(raw.Fees, raw.Currency),
			TradeCurrency: raw.TradeCurrency,
			ExchangeRate:  raw.ExchangeRate,
			ISIN:          raw.ISIN,
			Notes:         raw.Notes,
		})
	}
	SortActions(actions)
	return actions, nil
}

// AccountCurrency returns the currency the account is denominated in, taken
// from the first action carrying one.
func AccountCurrency(actions []Action) string {
	for i := range actions {
		if c := actions[i].Total.Currency(); c != "" {
			return c
		}
	}
	return "USD"
}
