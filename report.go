package trader

import (
	"github.com/thuva4/am-i-bad-trader/date"
)

// Holding is one currently open position with its market valuation.
// Instruments missing from the market bundle keep their tracked state but
// carry no valuation; they are excluded from portfolio value totals.
type Holding struct {
	Instrument    string
	Shares        Quantity
	CostBasis     Money
	AvgCost       Money
	CurrentPrice  float64
	CurrentValue  Money
	HasValue      bool
	AsOf          date.Date
	UnrealizedPnL Money
	UnrealizedPct Percent
}

func (h Holding) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("ticker", h.Instrument)
	w.Append("shares", h.Shares)
	w.Append("cost_basis", h.CostBasis)
	w.Append("avg_cost", h.AvgCost)
	if h.HasValue {
		w.Append("current_price", h.CurrentPrice)
		w.Append("current_value", h.CurrentValue)
		w.Append("as_of", h.AsOf)
		w.Append("unrealized_pnl", h.UnrealizedPnL)
		w.Append("unrealized_pct", float64(h.UnrealizedPct))
	} else {
		w.Append("current_value", nil)
	}
	return w.MarshalJSON()
}

// Report is the complete result of one analysis run: everything the
// renderers need, nothing left to compute.
type Report struct {
	GeneratedOn date.Date
	Currency    string
	Config      Config

	Holdings   []Holding
	TotalValue Money // valued holdings only
	Invested   Money
	Realized   Money
	RealizedBy map[string]Money
	TotalFees  Money
	Ledger     CashLedger

	Actions    []ScoredAction
	DCA        []DCASequence
	Findings   []Finding
	RoundTrips []RoundTrip
	Series     *ValueSeries
	Risk       RiskSnapshot
	Benchmark  BenchmarkComparison

	Anomalies []Anomaly
	Gaps      []string // traded instruments absent from the market bundle
	Summary   Summary
}

func (r *Report) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("generated_on", r.GeneratedOn)
	w.Append("currency", r.Currency)
	w.Append("holdings", r.Holdings)
	w.Append("total_value", r.TotalValue)
	w.Append("invested", r.Invested)
	w.Append("realized_pnl", r.Realized)
	w.Optional("realized_by_instrument", r.RealizedBy)
	w.Append("fees", r.TotalFees)
	w.Append("ledger", r.Ledger)
	w.Append("actions", r.Actions)
	w.Optional("dca_sequences", r.DCA)
	w.Optional("findings", r.Findings)
	w.Optional("round_trips", r.RoundTrips)
	if r.Series != nil && r.Series.Len() > 0 {
		w.Append("value_series", r.Series)
	}
	w.Append("risk", r.Risk)
	w.Append("benchmark", r.Benchmark)
	w.Optional("anomalies", r.Anomalies)
	w.Optional("market_data_gaps", r.Gaps)
	w.Append("summary", r.Summary)
	return w.MarshalJSON()
}

// ScoredTrades returns the scored actions that are trades with a score.
func (r *Report) ScoredTrades() []*ScoredAction {
	var out []*ScoredAction
	for i := range r.Actions {
		if r.Actions[i].Kind.IsTrade() && r.Actions[i].HasScore {
			out = append(out, &r.Actions[i])
		}
	}
	return out
}

// FindingsByTag returns the findings carrying the given tag.
func (r *Report) FindingsByTag(tag PatternTag) []*Finding {
	var out []*Finding
	for i := range r.Findings {
		if r.Findings[i].Tag == tag {
			out = append(out, &r.Findings[i])
		}
	}
	return out
}
