package trader

import (
	"fmt"
	"sort"

	"github.com/thuva4/am-i-bad-trader/date"
)

// epsilonShares is the threshold below which a share count is treated as
// fully sold out. Fractional-share brokers leave dust like 1e-12 behind.
const epsilonShares = 1e-9

// Position is the tracked state of one instrument. Shares never go
// negative, and a position with no shares carries no cost basis.
type Position struct {
	Instrument string
	Shares     Quantity
	CostBasis  Money
}

// AvgCost returns the average cost per share, zero money when flat.
func (p *Position) AvgCost() Money {
	if p.Shares.IsZero() {
		return M(0, p.CostBasis.Currency())
	}
	return p.CostBasis.Div(p.Shares)
}

// SaleRecord is the realized outcome of one SELL action.
type SaleRecord struct {
	ActionID    string
	Date        date.Date
	Instrument  string
	Quantity    Quantity
	Proceeds    Money
	CostOfSold  Money
	RealizedPnL Money
}

func (s SaleRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("action_id", s.ActionID)
	w.Append("date", s.Date)
	w.Append("ticker", s.Instrument)
	w.Append("quantity", s.Quantity)
	w.Append("proceeds", s.Proceeds)
	w.Append("cost_of_sold", s.CostOfSold)
	w.Append("realized_pnl", s.RealizedPnL)
	return w.MarshalJSON()
}

// Anomaly is a data-integrity problem found while replaying actions. The
// replay keeps going; anomalies surface in the report instead of aborting it.
type Anomaly struct {
	Date       date.Date `json:"date"`
	ActionID   string    `json:"action_id"`
	Instrument string    `json:"ticker,omitempty"`
	Kind       string    `json:"kind"`
	Detail     string    `json:"detail"`
}

// CashLedger accumulates the non-trade money movements of the account.
type CashLedger struct {
	Deposits    Money `json:"deposits"`
	Withdrawals Money `json:"withdrawals"`
	Dividends   Money `json:"dividends"`
	Interest    Money `json:"interest"`
	Fees        Money `json:"fees"`
}

// Tracker replays actions in chronological order and accumulates portfolio
// state. It uses the average-cost method: every sale is costed at the
// running average of the open position.
type Tracker struct {
	Currency  string
	positions map[string]*Position
	Ledger    CashLedger
	Sales     []SaleRecord
	Anomalies []Anomaly
	Invested  Money // sum of BUY totals
	Realized  Money // sum of realized P&L over all sales
	TotalFees Money // explicit trade fees, separate from FEE actions
}

// NewTracker returns a tracker denominated in the given account currency.
func NewTracker(currency string) *Tracker {
	return &Tracker{
		Currency:  currency,
		positions: make(map[string]*Position),
		Ledger: CashLedger{
			Deposits:    M(0, currency),
			Withdrawals: M(0, currency),
			Dividends:   M(0, currency),
			Interest:    M(0, currency),
			Fees:        M(0, currency),
		},
		Invested:  M(0, currency),
		Realized:  M(0, currency),
		TotalFees: M(0, currency),
	}
}

// Position returns the current position for instrument, creating an empty
// one on first use.
func (t *Tracker) Position(instrument string) *Position {
	p := t.positions[instrument]
	if p == nil {
		p = &Position{Instrument: instrument, CostBasis: M(0, t.Currency)}
		t.positions[instrument] = p
	}
	return p
}

// Positions returns all non-empty positions sorted by instrument.
func (t *Tracker) Positions() []*Position {
	out := make([]*Position, 0, len(t.positions))
	for _, p := range t.positions {
		if !p.Shares.IsZero() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Instrument < out[j].Instrument })
	return out
}

// Replay applies every action in order. Actions must already be sorted; the
// tracker does not re-sort so that the ingestion tie-break order survives.
func (t *Tracker) Replay(actions []Action) {
	for i := range actions {
		t.apply(&actions[i])
	}
}

func (t *Tracker) apply(a *Action) {
	amount := a.Total.Abs()
	if !a.Fees.IsZero() {
		t.TotalFees = t.TotalFees.Add(a.Fees.Abs())
	}
	switch a.Kind {
	case KindBuy:
		p := t.Position(a.Instrument)
		p.Shares = p.Shares.Add(a.Quantity)
		p.CostBasis = p.CostBasis.Add(amount)
		t.Invested = t.Invested.Add(amount)
	case KindSell:
		t.sell(a, amount)
	case KindDividend:
		t.Ledger.Dividends = t.Ledger.Dividends.Add(amount)
	case KindInterest:
		t.Ledger.Interest = t.Ledger.Interest.Add(amount)
	case KindDeposit:
		t.Ledger.Deposits = t.Ledger.Deposits.Add(amount)
	case KindWithdrawal:
		t.Ledger.Withdrawals = t.Ledger.Withdrawals.Add(amount)
	case KindFee:
		t.Ledger.Fees = t.Ledger.Fees.Add(amount)
	default:
		// SPLIT, TRANSFER, OTHER: ledger-only kinds, no state transition
	}
}

func (t *Tracker) sell(a *Action, proceeds Money) {
	p := t.Position(a.Instrument)
	if p.Shares.IsZero() {
		t.anomaly(a, "sell-without-position", fmt.Sprintf("sell of %s %s with no open position", a.Quantity, a.Instrument))
		return
	}
	qty := a.Quantity
	if qty.GreaterThan(p.Shares) {
		t.anomaly(a, "oversell", fmt.Sprintf("sell of %s %s exceeds held %s, clamped", qty, a.Instrument, p.Shares))
		qty = p.Shares
	}
	avg := p.AvgCost()
	costOfSold := avg.Mul(qty)
	pnl := proceeds.Sub(costOfSold)

	p.Shares = p.Shares.Sub(qty)
	p.CostBasis = p.CostBasis.Sub(costOfSold)
	if p.Shares.InexactFloat64() < epsilonShares {
		p.Shares = Q(0)
		p.CostBasis = M(0, t.Currency)
	}

	t.Realized = t.Realized.Add(pnl)
	t.Sales = append(t.Sales, SaleRecord{
		ActionID:    a.ID,
		Date:        a.Date,
		Instrument:  a.Instrument,
		Quantity:    qty,
		Proceeds:    proceeds,
		CostOfSold:  costOfSold,
		RealizedPnL: pnl,
	})
}

func (t *Tracker) anomaly(a *Action, kind, detail string) {
	t.Anomalies = append(t.Anomalies, Anomaly{
		Date:       a.Date,
		ActionID:   a.ID,
		Instrument: a.Instrument,
		Kind:       kind,
		Detail:     detail,
	})
}

// RealizedByInstrument sums the realized P&L of every sale per instrument.
// Nil when nothing was sold.
func (t *Tracker) RealizedByInstrument() map[string]Money {
	var out map[string]Money
	for i := range t.Sales {
		s := &t.Sales[i]
		if out == nil {
			out = make(map[string]Money)
		}
		m, ok := out[s.Instrument]
		if !ok {
			m = M(0, t.Currency)
		}
		out[s.Instrument] = m.Add(s.RealizedPnL)
	}
	return out
}

// SaleFor returns the sale record produced by action id, nil when the
// action was skipped or is not a sell.
func (t *Tracker) SaleFor(actionID string) *SaleRecord {
	for i := range t.Sales {
		if t.Sales[i].ActionID == actionID {
			return &t.Sales[i]
		}
	}
	return nil
}
