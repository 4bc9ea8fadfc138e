package trader

import "math"

// Config carries the tunable constants of the analysis engine. The zero
// value is not usable; start from DefaultConfig.
type Config struct {
	// ScoreWindowBars is the forward window of trading days a timing score
	// looks at.
	ScoreWindowBars int
	// ImpactWindowDays is the calendar half-window, on each side of an
	// action, used to find the optimal counterfactual price. It is narrower
	// than the score window on purpose: impact means a nearby optimum, the
	// score a meaningful trend.
	ImpactWindowDays int
	// MinBarsForScore is the number of post-action bars below which a score
	// is marked partial.
	MinBarsForScore int
	// RiskFreeRate is the annual rate used by Sharpe and Sortino.
	RiskFreeRate float64
	// Benchmark is the ticker the portfolio is compared against.
	Benchmark string
	// Concurrency bounds the per-instrument analysis workers. Zero means
	// one worker per instrument.
	Concurrency int
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		ScoreWindowBars:  90,
		ImpactWindowDays: 30,
		MinBarsForScore:  5,
		RiskFreeRate:     0.045,
		Benchmark:        "SPY",
	}
}

// scoreIntervals are the forward bar offsets retained as score details.
var scoreIntervals = [...]int{1, 5, 10, 30, 60, 90}

// IntervalPrice is the adjusted close n bars after an action.
type IntervalPrice struct {
	Bars  int     `json:"bars"`
	Price float64 `json:"price"`
}

// ScoredAction decorates an action with the timing analysis outcome.
type ScoredAction struct {
	Action
	TimingScore  Percent
	HasScore     bool
	PartialScore bool
	DollarImpact Money
	HasImpact    bool
	PriceAfter   []IntervalPrice
	Flags        []PatternTag
	IsDCA        bool
}

// Flagged reports whether the action carries the given pattern tag.
func (sa *ScoredAction) Flagged(tag PatternTag) bool {
	for _, f := range sa.Flags {
		if f == tag {
			return true
		}
	}
	return false
}

func (sa ScoredAction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(sa.Action)
	if sa.HasScore {
		w.Append("timing_score", float64(sa.TimingScore))
	} else {
		w.Append("timing_score", nil)
	}
	w.Optional("partial_score", sa.PartialScore)
	if sa.HasImpact {
		w.Append("dollar_impact", sa.DollarImpact)
	}
	if len(sa.PriceAfter) > 0 {
		w.Append("price_after", sa.PriceAfter)
	}
	if len(sa.Flags) > 0 {
		w.Append("pattern_flags", sa.Flags)
	}
	w.Optional("is_dca", sa.IsDCA)
	return w.MarshalJSON()
}

// ScoreAction computes the timing score and dollar impact of one trade
// against its instrument's adjusted-close series. Non-trade actions and
// actions without usable prices come back unscored, never as an error:
// missing market data degrades the report, it does not abort it.
func ScoreAction(a *Action, ins *Instrument, cfg *Config) ScoredAction {
	sa := ScoredAction{Action: *a}
	if !a.Kind.IsTrade() || ins == nil || a.Price <= 0 {
		return sa
	}

	_, after := ins.Prices.After(a.Date, cfg.ScoreWindowBars)
	for _, n := range scoreIntervals {
		if n > len(after) {
			break
		}
		if p := after[n-1]; !math.IsNaN(p) && p > 0 {
			sa.PriceAfter = append(sa.PriceAfter, IntervalPrice{Bars: n, Price: p})
		}
	}
	after = usable(after)
	if len(after) > 0 {
		var score float64
		switch a.Kind {
		case KindSell:
			score = 100 * (a.Price - minOf(after)) / a.Price
		case KindBuy:
			score = 100 * (maxOf(after) - a.Price) / a.Price
		}
		sa.TimingScore = Percent(clamp(score, -100, 100))
		sa.HasScore = true
		sa.PartialScore = len(after) < cfg.MinBarsForScore
	}

	_, around := ins.Prices.Between(a.Date.Add(-cfg.ImpactWindowDays), a.Date.Add(cfg.ImpactWindowDays))
	around = usable(around)
	if len(around) > 0 {
		// Deviation from the optimal nearby price, as a fraction of the
		// trade price, applied to the account-currency total. Raw price
		// differences times quantity would mix currencies.
		var dev float64
		switch a.Kind {
		case KindSell:
			dev = (maxOf(around) - a.Price) / a.Price
		case KindBuy:
			dev = (a.Price - minOf(around)) / a.Price
		}
		if dev < 0 {
			dev = 0
		}
		sa.DollarImpact = a.Total.Abs().Mul(Q(dev))
		sa.HasImpact = true
	}
	return sa
}

// usable filters out NaN and non-positive bars, which represent halts or
// data holes, not prices.
func usable(values []float64) []float64 {
	out := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) && v > 0 {
			out = append(out, v)
		}
	}
	return out
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
