package trader

import (
	"sort"

	"github.com/thuva4/am-i-bad-trader/date"
)

// minDCAMembers is the smallest run of buys that counts as a schedule.
const minDCAMembers = 4

// DCASequence is a detected recurring-purchase schedule on one instrument.
type DCASequence struct {
	Instrument    string
	ActionIDs     []string
	Start         date.Date
	End           date.Date
	IntervalLabel string
	MedianGapDays float64
	MedianAmount  Money
	Consistency   Percent
	// Return of the schedule versus putting the whole amount in at the
	// first buy. Valid only when HasReturns is set; an instrument without
	// price data still gets its schedule reported.
	DCAReturn     Percent
	LumpSumReturn Percent
	HasReturns    bool
}

func (s DCASequence) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("ticker", s.Instrument)
	w.Append("action_ids", s.ActionIDs)
	w.Append("start", s.Start)
	w.Append("end", s.End)
	w.Append("interval", s.IntervalLabel)
	w.Append("median_gap_days", s.MedianGapDays)
	w.Append("median_amount", s.MedianAmount)
	w.Append("consistency_score", float64(s.Consistency))
	if s.HasReturns {
		w.Append("dca_return_pct", float64(s.DCAReturn))
		w.Append("lump_sum_return_pct", float64(s.LumpSumReturn))
	}
	return w.MarshalJSON()
}

// DetectDCA scans one instrument's buys for recurring-purchase schedules.
// A candidate grows while each new buy stays within 50% of the running
// median amount and its gap stays within 2.5x the running median gap; the
// very first gap must land between 1 and 35 days. A run of at least four
// buys qualifies. When a buy breaks the run, it may start the next one, so
// two schedules never share a member.
func DetectDCA(instrument string, buys []*Action, ins *Instrument) []DCASequence {
	var out []DCASequence
	i := 0
	for i < len(buys) {
		seq := []*Action{buys[i]}
		j := i + 1
		for j < len(buys) {
			if !dcaExtends(seq, buys[j]) {
				break
			}
			seq = append(seq, buys[j])
			j++
		}
		if len(seq) >= minDCAMembers {
			out = append(out, buildSequence(instrument, seq, ins))
			i = j
		} else {
			i++
		}
	}
	return out
}

func dcaExtends(seq []*Action, next *Action) bool {
	gap := float64(next.Date.Sub(seq[len(seq)-1].Date))
	if len(seq) == 1 {
		if gap < 1 || gap > 35 {
			return false
		}
	} else {
		if gap > 2.5*median(gaps(seq)) {
			return false
		}
	}
	med := median(amounts(seq))
	amt := next.Total.Abs().InexactFloat64()
	return amt >= med*0.5 && amt <= med*1.5
}

func buildSequence(instrument string, seq []*Action, ins *Instrument) DCASequence {
	ids := make([]string, len(seq))
	for i, a := range seq {
		ids[i] = a.ID
	}
	gapList := gaps(seq)
	amtList := amounts(seq)
	medGap := median(gapList)
	medAmt := median(amtList)

	s := DCASequence{
		Instrument:    instrument,
		ActionIDs:     ids,
		Start:         seq[0].Date,
		End:           seq[len(seq)-1].Date,
		IntervalLabel: intervalLabel(medGap),
		MedianGapDays: medGap,
		MedianAmount:  M(medAmt, seq[0].Total.Currency()),
		Consistency:   Percent((consistency(amtList, medAmt) + consistency(gapList, medGap)) / 2),
	}

	if ins != nil {
		if _, last := ins.Prices.Latest(); last > 0 && seq[0].Price > 0 {
			var cost, shares float64
			for _, a := range seq {
				cost += a.Price * a.Quantity.InexactFloat64()
				shares += a.Quantity.InexactFloat64()
			}
			if shares > 0 && cost > 0 {
				avg := cost / shares
				s.DCAReturn = Percent(100 * (last - avg) / avg)
				s.LumpSumReturn = Percent(100 * (last - seq[0].Price) / seq[0].Price)
				s.HasReturns = true
			}
		}
	}
	return s
}

func intervalLabel(medGap float64) string {
	switch {
	case medGap >= 1 && medGap <= 2:
		return "daily"
	case medGap >= 5 && medGap <= 9:
		return "weekly"
	case medGap >= 12 && medGap <= 16:
		return "biweekly"
	case medGap >= 25 && medGap <= 35:
		return "monthly"
	default:
		return "irregular"
	}
}

// consistency maps a series' mean absolute deviation from its median onto a
// 0..100 score, 100 meaning perfectly regular.
func consistency(values []float64, med float64) float64 {
	if len(values) == 0 || med == 0 {
		return 0
	}
	var dev float64
	for _, v := range values {
		d := (v - med) / med
		if d < 0 {
			d = -d
		}
		dev += d
	}
	score := 100 - dev/float64(len(values))*100
	if score < 0 {
		return 0
	}
	return score
}

func gaps(seq []*Action) []float64 {
	out := make([]float64, 0, len(seq)-1)
	for i := 1; i < len(seq); i++ {
		out = append(out, float64(seq[i].Date.Sub(seq[i-1].Date)))
	}
	return out
}

func amounts(seq []*Action) []float64 {
	out := make([]float64, len(seq))
	for i, a := range seq {
		out[i] = a.Total.Abs().InexactFloat64()
	}
	return out
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
