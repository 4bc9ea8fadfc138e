package trader

import (
	"fmt"
	"math"
	"sort"

	"github.com/thuva4/am-i-bad-trader/date"
)

// PatternTag is the closed set of behavioral patterns the detector flags.
type PatternTag string

const (
	TagPanicSell     PatternTag = "panic_sell"
	TagFOMOBuy       PatternTag = "fomo_buy"
	TagWorstSell     PatternTag = "worst_timed_sell"
	TagWorstBuy      PatternTag = "worst_timed_buy"
	TagWellTimedSell PatternTag = "well_timed_sell"
	TagWellTimedBuy  PatternTag = "well_timed_buy"
	TagDividendMiss  PatternTag = "dividend_miss"
	TagLosingTrip    PatternTag = "losing_round_trip"
	TagWashSale      PatternTag = "wash_sale"
	TagOvertrading   PatternTag = "overtrading"
	TagConcentration PatternTag = "concentration"
)

// Trigger thresholds, all percentages.
const (
	panicDeclinePct   = 5  // prior 5-bar decline that marks a panic sell
	fomoRunUpPct      = 10 // prior 10-bar run-up that marks a FOMO buy
	worstSellRallyPct = 10
	worstBuyDropPct   = 10
	wellSellDropPct   = 5
	wellBuyGainPct    = 10
	concentrationPct  = 25
)

const (
	dividendMissDays = 14 // calendar days before an ex-date
	washSaleDays     = 30 // calendar days around a losing sell
	overtradingDays  = 60 // calendar window for the trade-count check
	overtradingCount = 3  // more than this many trades in the window
)

// Trajectory samples the price path after an action at one week, one month
// and one quarter of trading days, as percent moves from the trade price.
type Trajectory struct {
	Week       Percent
	Month      Percent
	Quarter    Percent
	HasWeek    bool
	HasMonth   bool
	HasQuarter bool
}

func (t Trajectory) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	if t.HasWeek {
		w.Append("after_1w_pct", float64(t.Week))
	}
	if t.HasMonth {
		w.Append("after_1m_pct", float64(t.Month))
	}
	if t.HasQuarter {
		w.Append("after_3m_pct", float64(t.Quarter))
	}
	return w.MarshalJSON()
}

// Finding is one detected pattern instance with its reasoning payload: the
// trigger metric, the price path afterwards, the optimal counterfactual and
// the recovery date when one exists.
type Finding struct {
	Tag        PatternTag
	Instrument string
	ActionIDs  []string
	Date       date.Date
	Metric     Percent
	Amount     Money // money attached to the finding, when one applies
	Detail     string

	Trajectory   *Trajectory
	OptimalDate  date.Date
	OptimalPrice float64
	RecoveryDate date.Date
	HasRecovery  bool
	// Panic sells only: the price never rose back above the sell price
	// inside the forward window, i.e. the sell turned out right.
	StayedBelowSellPrice bool
	hasStayedBelow       bool
}

func (f Finding) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("pattern", f.Tag)
	w.Append("ticker", f.Instrument)
	w.Append("action_ids", f.ActionIDs)
	w.Append("date", f.Date)
	w.Append("metric_pct", float64(f.Metric))
	if !f.Amount.IsZero() {
		w.Append("amount", f.Amount)
	}
	w.Append("detail", f.Detail)
	if f.Trajectory != nil {
		w.Append("trajectory", f.Trajectory)
	}
	if f.OptimalPrice > 0 {
		w.Append("optimal_date", f.OptimalDate)
		w.Append("optimal_price", f.OptimalPrice)
	}
	if f.HasRecovery {
		w.Append("recovery_date", f.RecoveryDate)
	}
	if f.hasStayedBelow {
		w.Append("stayed_below_sell_price", f.StayedBelowSellPrice)
	}
	return w.MarshalJSON()
}

// DetectPatterns runs every per-instrument classifier over one instrument's
// trades. Trades must be chronological. sales maps action ids to the
// tracker's realized outcomes; the wash-sale check needs to know a sell lost
// money. The portfolio-level concentration check lives in Analyze, not here.
func DetectPatterns(instrument string, trades []*Action, ins *Instrument, sales map[string]*SaleRecord, cfg *Config) []Finding {
	var out []Finding
	for _, a := range trades {
		if ins != nil && a.Price > 0 {
			out = append(out, detectPriorWindow(a, ins)...)
			out = append(out, detectForwardWindow(a, ins, cfg)...)
		}
		if ins != nil && a.Kind == KindSell {
			out = append(out, detectDividendMiss(a, ins)...)
		}
		if a.Kind == KindSell {
			out = append(out, detectWashSale(a, trades, sales)...)
		}
	}
	out = append(out, detectOvertrading(instrument, trades)...)
	for _, rt := range MatchRoundTrips(instrument, trades) {
		if rt.Net.IsNegative() {
			out = append(out, Finding{
				Tag:        TagLosingTrip,
				Instrument: instrument,
				ActionIDs:  []string{rt.BuyID, rt.SellID},
				Date:       rt.SellDate,
				Metric:     rt.NetReturn,
				Amount:     rt.Net,
				Detail: fmt.Sprintf("round trip of %s closed after %d days at %s net",
					rt.Quantity, rt.HoldingDays, rt.Net.SignedString()),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// detectPriorWindow flags trades driven by the price move leading into them:
// panic sells after a slide, FOMO buys after a run-up.
func detectPriorWindow(a *Action, ins *Instrument) []Finding {
	var out []Finding
	switch a.Kind {
	case KindSell:
		_, before := ins.Prices.Before(a.Date, 5)
		before = usable(before)
		if len(before) == 0 {
			return nil
		}
		change := 100 * (a.Price - before[0]) / before[0]
		if change < -panicDeclinePct {
			f := Finding{
				Tag:        TagPanicSell,
				Instrument: a.Instrument,
				ActionIDs:  []string{a.ID},
				Date:       a.Date,
				Metric:     Percent(change),
				Detail:     fmt.Sprintf("sold after a %.1f%% slide over the prior 5 trading days", -change),
			}
			days, after := usablePairs(ins.Prices.After(a.Date, 90))
			f.Trajectory = trajectoryFrom(a.Price, after)
			f.hasStayedBelow = len(after) > 0
			f.StayedBelowSellPrice = true
			for i, v := range after {
				if v >= a.Price {
					f.StayedBelowSellPrice = false
					f.RecoveryDate = days[i]
					f.HasRecovery = true
					break
				}
			}
			out = append(out, f)
		}
	case KindBuy:
		_, before := ins.Prices.Before(a.Date, 10)
		before = usable(before)
		if len(before) == 0 {
			return nil
		}
		change := 100 * (a.Price - before[0]) / before[0]
		if change > fomoRunUpPct {
			f := Finding{
				Tag:        TagFOMOBuy,
				Instrument: a.Instrument,
				ActionIDs:  []string{a.ID},
				Date:       a.Date,
				Metric:     Percent(change),
				Detail:     fmt.Sprintf("bought after a %.1f%% run-up over the prior 10 trading days", change),
			}
			_, after := ins.Prices.After(a.Date, 90)
			f.Trajectory = trajectoryFrom(a.Price, after)
			out = append(out, f)
		}
	}
	return out
}

// detectForwardWindow judges a trade by what the price did afterwards.
func detectForwardWindow(a *Action, ins *Instrument, cfg *Config) []Finding {
	days, after := usablePairs(ins.Prices.After(a.Date, cfg.ScoreWindowBars))
	if len(after) == 0 {
		return nil
	}
	traj := trajectoryFrom(a.Price, after)

	var out []Finding
	emit := func(tag PatternTag, metric float64, optIdx int, detail string) {
		out = append(out, Finding{
			Tag:          tag,
			Instrument:   a.Instrument,
			ActionIDs:    []string{a.ID},
			Date:         a.Date,
			Metric:       Percent(metric),
			Detail:       detail,
			Trajectory:   traj,
			OptimalDate:  days[optIdx],
			OptimalPrice: after[optIdx],
		})
	}

	maxIdx, minIdx := 0, 0
	for i, v := range after {
		if v > after[maxIdx] {
			maxIdx = i
		}
		if v < after[minIdx] {
			minIdx = i
		}
	}
	maxPct := 100 * (after[maxIdx] - a.Price) / a.Price
	minPct := 100 * (after[minIdx] - a.Price) / a.Price

	switch a.Kind {
	case KindSell:
		if maxPct > worstSellRallyPct {
			emit(TagWorstSell, maxPct, maxIdx,
				fmt.Sprintf("price rallied %.1f%% within %d trading days of the sale", maxPct, cfg.ScoreWindowBars))
		}
		if minPct < -wellSellDropPct {
			emit(TagWellTimedSell, minPct, minIdx,
				fmt.Sprintf("price fell %.1f%% within %d trading days of the sale", -minPct, cfg.ScoreWindowBars))
		}
	case KindBuy:
		if minPct < -worstBuyDropPct {
			emit(TagWorstBuy, minPct, minIdx,
				fmt.Sprintf("price dropped %.1f%% within %d trading days of the purchase", -minPct, cfg.ScoreWindowBars))
		}
		if maxPct > wellBuyGainPct {
			emit(TagWellTimedBuy, maxPct, maxIdx,
				fmt.Sprintf("price gained %.1f%% within %d trading days of the purchase", maxPct, cfg.ScoreWindowBars))
		}
	}
	return out
}

func detectDividendMiss(a *Action, ins *Instrument) []Finding {
	var out []Finding
	for _, d := range ins.DividendsBetween(a.Date.Add(1), a.Date.Add(dividendMissDays)) {
		missed := d.Amount * a.Quantity.InexactFloat64()
		out = append(out, Finding{
			Tag:        TagDividendMiss,
			Instrument: a.Instrument,
			ActionIDs:  []string{a.ID},
			Date:       a.Date,
			Metric:     Percent(0),
			Amount:     M(missed, ins.Currency),
			Detail: fmt.Sprintf("sold %d days before the %s ex-dividend date, forgoing %.2f per share",
				d.ExDate.Sub(a.Date), d.ExDate, d.Amount),
		})
	}
	return out
}

// detectWashSale flags a losing sell with a repurchase of the same
// instrument within 30 calendar days on either side.
func detectWashSale(a *Action, trades []*Action, sales map[string]*SaleRecord) []Finding {
	sale := sales[a.ID]
	if sale == nil || !sale.RealizedPnL.IsNegative() {
		return nil
	}
	for _, b := range trades {
		if b.Kind != KindBuy {
			continue
		}
		gap := b.Date.Sub(a.Date)
		if gap < 0 {
			gap = -gap
		}
		if gap > washSaleDays {
			continue
		}
		return []Finding{{
			Tag:        TagWashSale,
			Instrument: a.Instrument,
			ActionIDs:  []string{a.ID, b.ID},
			Date:       a.Date,
			Metric:     Percent(0),
			Amount:     sale.RealizedPnL,
			Detail: fmt.Sprintf("sold at a %s loss with a repurchase %d days away",
				sale.RealizedPnL.Abs(), gap),
		}}
	}
	return nil
}

// detectOvertrading reports the busiest 60-day window when it holds more
// trades than the threshold. One finding per instrument is enough; the
// point is the habit, not each occurrence.
func detectOvertrading(instrument string, trades []*Action) []Finding {
	best, bestStart := 0, 0
	for i := range trades {
		end := trades[i].Date.Add(overtradingDays)
		n := 0
		for j := i; j < len(trades) && !trades[j].Date.After(end); j++ {
			n++
		}
		if n > best {
			best, bestStart = n, i
		}
	}
	if best <= overtradingCount {
		return nil
	}
	ids := make([]string, 0, best)
	end := trades[bestStart].Date.Add(overtradingDays)
	for j := bestStart; j < len(trades) && !trades[j].Date.After(end); j++ {
		ids = append(ids, trades[j].ID)
	}
	return []Finding{{
		Tag:        TagOvertrading,
		Instrument: instrument,
		ActionIDs:  ids,
		Date:       trades[bestStart].Date,
		Metric:     Percent(best),
		Detail:     fmt.Sprintf("%d trades within %d days", best, overtradingDays),
	}}
}

// usablePairs filters a day/value window down to usable bars, keeping the
// two slices in step.
func usablePairs(days []date.Date, values []float64) ([]date.Date, []float64) {
	outDays := days[:0:0]
	outVals := values[:0:0]
	for i, v := range values {
		if !math.IsNaN(v) && v > 0 {
			outDays = append(outDays, days[i])
			outVals = append(outVals, v)
		}
	}
	return outDays, outVals
}

// trajectoryFrom samples the forward window at trading-day offsets of one
// week, one month and one quarter.
func trajectoryFrom(price float64, after []float64) *Trajectory {
	if price <= 0 || len(after) == 0 {
		return nil
	}
	t := &Trajectory{}
	if len(after) > 4 {
		t.Week, t.HasWeek = Percent(100*(after[4]-price)/price), true
	}
	if len(after) > 21 {
		t.Month, t.HasMonth = Percent(100*(after[21]-price)/price), true
	}
	if len(after) > 63 {
		t.Quarter, t.HasQuarter = Percent(100*(after[63]-price)/price), true
	}
	return t
}
