package trader

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/thuva4/am-i-bad-trader/date"
	"gonum.org/v1/gonum/stat"
)

// tradingDaysPerYear annualizes daily return statistics.
const tradingDaysPerYear = 252

// ValueSeries is the daily account-currency value of the holdings, with the
// net money that flowed into them on each sampled day.
type ValueSeries struct {
	Days   []date.Date
	Values []float64
	Flows  []float64
}

// Len returns the number of sampled days.
func (v *ValueSeries) Len() int { return len(v.Days) }

// MarshalJSON encodes the series as a list of day points.
func (v *ValueSeries) MarshalJSON() ([]byte, error) {
	type point struct {
		Date  date.Date `json:"date"`
		Value float64   `json:"value"`
		Flow  float64   `json:"flow,omitempty"`
	}
	points := make([]point, v.Len())
	for i := range v.Days {
		points[i] = point{Date: v.Days[i], Value: v.Values[i], Flow: v.Flows[i]}
	}
	return json.Marshal(points)
}

// BuildValueSeries replays the holdings day by day over the union of the
// traded instruments' trading days, from the first trade to the last known
// bar. Prices carry forward over gaps and convert to the account currency
// with each instrument's last seen exchange rate. The flow on a day is the
// buy total minus the sell total applied on that day, so returns can be
// cash-flow adjusted.
func BuildValueSeries(actions []Action, market *MarketData) *ValueSeries {
	var start, end date.Date
	daySet := make(map[date.Date]bool)
	traded := make(map[string]bool)
	for i := range actions {
		if actions[i].Kind.IsTrade() {
			if start.IsZero() {
				start = actions[i].Date
			}
			traded[actions[i].Instrument] = true
		}
	}
	if start.IsZero() {
		return &ValueSeries{}
	}
	for t := range traded {
		ins := market.Get(t)
		if ins == nil {
			continue
		}
		last, _ := ins.Prices.Latest()
		if end.IsZero() || last.After(end) {
			end = last
		}
		days, _ := ins.Prices.Between(start, last)
		for _, d := range days {
			daySet[d] = true
		}
	}
	if len(daySet) == 0 {
		return &ValueSeries{}
	}
	days := make([]date.Date, 0, len(daySet))
	for d := range daySet {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	series := &ValueSeries{}
	shares := make(map[string]float64)
	rates := make(map[string]float64)
	next := 0
	for _, day := range days {
		var flow float64
		for next < len(actions) && !actions[next].Date.After(day) {
			a := &actions[next]
			next++
			if !a.Kind.IsTrade() {
				continue
			}
			rates[a.Instrument] = a.Rate()
			amount := a.Total.Abs().InexactFloat64()
			switch a.Kind {
			case KindBuy:
				shares[a.Instrument] += a.Quantity.InexactFloat64()
				flow += amount
			case KindSell:
				held := shares[a.Instrument]
				q := a.Quantity.InexactFloat64()
				if q > held {
					q = held
				}
				shares[a.Instrument] = held - q
				flow -= amount
			}
		}
		var value float64
		for t, q := range shares {
			if q < epsilonShares {
				continue
			}
			ins := market.Get(t)
			if ins == nil {
				continue
			}
			price, ok := ins.Prices.ValueAsOf(day)
			if !ok {
				continue
			}
			value += tradeToAccount(price*q, rates[t])
		}
		series.Days = append(series.Days, day)
		series.Values = append(series.Values, value)
		series.Flows = append(series.Flows, flow)
	}
	return series
}

// Returns computes the daily cash-flow-adjusted returns of the series.
// Days where the adjusted base is not positive are skipped rather than
// poisoning the statistics.
func (v *ValueSeries) Returns() (days []date.Date, returns []float64) {
	for i := 1; i < len(v.Values); i++ {
		base := v.Values[i-1] + v.Flows[i]
		if base <= 0 {
			continue
		}
		days = append(days, v.Days[i])
		returns = append(returns, (v.Values[i]-v.Values[i-1]-v.Flows[i])/base)
	}
	return days, returns
}

// Drawdown is the deepest peak-to-trough decline of the value series.
type Drawdown struct {
	Pct          Percent
	PeakDate     date.Date
	TroughDate   date.Date
	RecoveryDate date.Date
	HasRecovery  bool
}

func (d Drawdown) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("pct", float64(d.Pct))
	w.Append("peak_date", d.PeakDate)
	w.Append("trough_date", d.TroughDate)
	if d.HasRecovery {
		w.Append("recovery_date", d.RecoveryDate)
	}
	return w.MarshalJSON()
}

// DailyStats summarizes the daily return distribution.
type DailyStats struct {
	Count     int       `json:"count"`
	WinRate   Percent   `json:"win_rate_pct"`
	Best      Percent   `json:"best_pct"`
	BestDate  date.Date `json:"best_date"`
	Worst     Percent   `json:"worst_pct"`
	WorstDate date.Date `json:"worst_date"`
}

// RiskSnapshot carries the risk metrics of the whole active period.
type RiskSnapshot struct {
	Volatility  Percent    `json:"annualized_volatility_pct"`
	Sharpe      float64    `json:"sharpe"`
	Sortino     float64    `json:"sortino"`
	MaxDrawdown Drawdown   `json:"max_drawdown"`
	Daily       DailyStats `json:"daily"`
	Partial     bool       `json:"partial,omitempty"`
}

// ComputeRisk derives the risk snapshot from a value series. With fewer
// than two usable returns the snapshot is marked partial and the
// ratio metrics stay zero.
func ComputeRisk(series *ValueSeries, cfg *Config) RiskSnapshot {
	days, returns := series.Returns()
	snap := RiskSnapshot{MaxDrawdown: maxDrawdown(series)}
	if len(returns) < 2 {
		snap.Partial = true
		return snap
	}

	mean := stat.Mean(returns, nil)
	vol := stat.StdDev(returns, nil) * math.Sqrt(tradingDaysPerYear)
	annual := mean * tradingDaysPerYear
	snap.Volatility = Percent(100 * vol)
	if vol > 0 {
		snap.Sharpe = (annual - cfg.RiskFreeRate) / vol
	}

	var downside float64
	for _, r := range returns {
		if r < 0 {
			downside += r * r
		}
	}
	downside = math.Sqrt(downside/float64(len(returns))) * math.Sqrt(tradingDaysPerYear)
	if downside > 0 {
		snap.Sortino = (annual - cfg.RiskFreeRate) / downside
	}

	best, worst := 0, 0
	wins := 0
	for i, r := range returns {
		if r > returns[best] {
			best = i
		}
		if r < returns[worst] {
			worst = i
		}
		if r > 0 {
			wins++
		}
	}
	snap.Daily = DailyStats{
		Count:     len(returns),
		WinRate:   Percent(100 * float64(wins) / float64(len(returns))),
		Best:      Percent(100 * returns[best]),
		BestDate:  days[best],
		Worst:     Percent(100 * returns[worst]),
		WorstDate: days[worst],
	}
	return snap
}

func maxDrawdown(series *ValueSeries) Drawdown {
	var dd Drawdown
	if series.Len() == 0 {
		return dd
	}
	peak, peakIdx := series.Values[0], 0
	worst := 0.0
	worstPeak, worstTrough := 0, 0
	for i, v := range series.Values {
		if v > peak {
			peak, peakIdx = v, i
		}
		if peak <= 0 {
			continue
		}
		d := (v - peak) / peak
		if d < worst {
			worst = d
			worstPeak, worstTrough = peakIdx, i
		}
	}
	dd.Pct = Percent(100 * worst)
	dd.PeakDate = series.Days[worstPeak]
	dd.TroughDate = series.Days[worstTrough]
	peakValue := series.Values[worstPeak]
	for i := worstTrough + 1; i < series.Len(); i++ {
		if series.Values[i] >= peakValue {
			dd.RecoveryDate = series.Days[i]
			dd.HasRecovery = true
			break
		}
	}
	return dd
}

// MonthlyPoint is one month of the cumulative portfolio-vs-benchmark
// comparison series.
type MonthlyPoint struct {
	Month     string  `json:"month"`
	Portfolio Percent `json:"portfolio_pct"`
	Benchmark Percent `json:"benchmark_pct"`
}

// BenchmarkComparison relates the portfolio's realized performance to a
// buy-and-hold position in the reference index over the same period.
type BenchmarkComparison struct {
	Ticker          string         `json:"ticker"`
	Years           float64        `json:"years"`
	PortfolioReturn Percent        `json:"portfolio_return_pct"`
	BenchmarkReturn Percent        `json:"benchmark_return_pct"`
	Alpha           Percent        `json:"alpha_pct"`
	PortfolioCAGR   Percent        `json:"portfolio_cagr_pct"`
	BenchmarkCAGR   Percent        `json:"benchmark_cagr_pct"`
	Monthly         []MonthlyPoint `json:"monthly,omitempty"`
	Partial         bool           `json:"partial,omitempty"`
}

// CompareBenchmark computes the buy-and-hold return of the benchmark over
// the portfolio's active period and the portfolio's own return on invested
// capital. Without benchmark data the comparison is marked partial.
func CompareBenchmark(series *ValueSeries, t *Tracker, market *MarketData, cfg *Config) BenchmarkComparison {
	cmp := BenchmarkComparison{Ticker: cfg.Benchmark}
	if series.Len() == 0 {
		cmp.Partial = true
		return cmp
	}
	start, end := series.Days[0], series.Days[series.Len()-1]
	cmp.Years = float64(end.Sub(start)) / 365.25

	invested := t.Invested.InexactFloat64()
	if invested > 0 {
		final := series.Values[series.Len()-1]
		var proceeds float64
		for i := range t.Sales {
			proceeds += t.Sales[i].Proceeds.InexactFloat64()
		}
		dividends := t.Ledger.Dividends.InexactFloat64()
		r := (final + proceeds + dividends - invested) / invested
		cmp.PortfolioReturn = Percent(100 * r)
		cmp.PortfolioCAGR = cagr(r, cmp.Years)
	}

	bench := market.Get(cfg.Benchmark)
	if bench == nil || bench.Prices.Len() == 0 {
		cmp.Partial = true
		return cmp
	}
	first, ok1 := bench.Prices.ValueAsOfNext(start)
	last, ok2 := bench.Prices.ValueAsOf(end)
	if !ok1 || !ok2 || first <= 0 {
		cmp.Partial = true
		return cmp
	}
	br := (last - first) / first
	cmp.BenchmarkReturn = Percent(100 * br)
	cmp.BenchmarkCAGR = cagr(br, cmp.Years)
	cmp.Alpha = cmp.PortfolioReturn - cmp.BenchmarkReturn
	cmp.Monthly = monthlySeries(series, bench, 12)
	return cmp
}

// cagr converts a total return into a compound annual growth rate.
func cagr(r, years float64) Percent {
	if years <= 0 || r <= -1 {
		return 0
	}
	return Percent(100 * (math.Pow(1+r, 1/years) - 1))
}

// monthlySeries builds the last n months of cumulative returns for the
// portfolio values and the benchmark closes, both measured from the first
// month-end in the window.
func monthlySeries(series *ValueSeries, bench *Instrument, n int) []MonthlyPoint {
	type monthEnd struct {
		key   string
		value float64
		day   date.Date
	}
	var ends []monthEnd
	for i, day := range series.Days {
		key := fmt.Sprintf("%04d-%02d", day.Year(), day.Month())
		if len(ends) > 0 && ends[len(ends)-1].key == key {
			ends[len(ends)-1] = monthEnd{key, series.Values[i], day}
		} else {
			ends = append(ends, monthEnd{key, series.Values[i], day})
		}
	}
	if len(ends) > n {
		ends = ends[len(ends)-n:]
	}
	if len(ends) < 2 {
		return nil
	}
	baseValue := ends[0].value
	baseBench, ok := bench.Prices.ValueAsOf(ends[0].day)
	if baseValue <= 0 || !ok || baseBench <= 0 {
		return nil
	}
	out := make([]MonthlyPoint, 0, len(ends)-1)
	for _, e := range ends[1:] {
		b, ok := bench.Prices.ValueAsOf(e.day)
		if !ok {
			continue
		}
		out = append(out, MonthlyPoint{
			Month:     e.key,
			Portfolio: Percent(100 * (e.value - baseValue) / baseValue),
			Benchmark: Percent(100 * (b - baseBench) / baseBench),
		})
	}
	return out
}
