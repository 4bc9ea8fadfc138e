package trader

import (
	"fmt"
	"sort"
)

// PatternCount is a tally of one pattern tag across the run.
type PatternCount struct {
	Pattern PatternTag `json:"pattern"`
	Count   int        `json:"count"`
}

// TradeRef points at one scored trade, for the best/worst lists.
type TradeRef struct {
	ActionID string     `json:"action_id"`
	Ticker   string     `json:"ticker"`
	Kind     ActionKind `json:"action"`
	Score    Percent    `json:"timing_score"`
	Impact   Money      `json:"dollar_impact"`
}

// Summary condenses a run into the few numbers and sentences a reader
// looks at first.
type Summary struct {
	Verdict         string         `json:"verdict"`
	AvgTimingScore  Percent        `json:"avg_timing_score"`
	ScoredTrades    int            `json:"scored_trades"`
	BestTrades      []TradeRef     `json:"best_trades,omitempty"`
	WorstTrades     []TradeRef     `json:"worst_trades,omitempty"`
	PatternCounts   []PatternCount `json:"pattern_counts,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
}

// BuildSummary derives the summary from an otherwise complete report.
func BuildSummary(r *Report) Summary {
	var s Summary
	scored := r.ScoredTrades()
	s.ScoredTrades = len(scored)
	if len(scored) > 0 {
		var sum float64
		for _, sa := range scored {
			sum += float64(sa.TimingScore)
		}
		s.AvgTimingScore = Percent(sum / float64(len(scored)))
	}

	ranked := append([]*ScoredAction(nil), scored...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].TimingScore > ranked[j].TimingScore })
	s.BestTrades = refs(ranked[:min(3, len(ranked))])
	worst := ranked[max(0, len(ranked)-3):]
	for i, j := 0, len(worst)-1; i < j; i, j = i+1, j-1 {
		worst[i], worst[j] = worst[j], worst[i]
	}
	s.WorstTrades = refs(worst)

	counts := make(map[PatternTag]int)
	for i := range r.Findings {
		counts[r.Findings[i].Tag]++
	}
	for tag, n := range counts {
		s.PatternCounts = append(s.PatternCounts, PatternCount{Pattern: tag, Count: n})
	}
	sort.Slice(s.PatternCounts, func(i, j int) bool {
		if s.PatternCounts[i].Count != s.PatternCounts[j].Count {
			return s.PatternCounts[i].Count > s.PatternCounts[j].Count
		}
		return s.PatternCounts[i].Pattern < s.PatternCounts[j].Pattern
	})

	s.Verdict = verdict(s.AvgTimingScore, counts, len(r.DCA))
	s.Recommendations = recommend(r, counts)
	return s
}

func refs(list []*ScoredAction) []TradeRef {
	out := make([]TradeRef, 0, len(list))
	for _, sa := range list {
		out = append(out, TradeRef{
			ActionID: sa.ID,
			Ticker:   sa.Instrument,
			Kind:     sa.Kind,
			Score:    sa.TimingScore,
			Impact:   sa.DollarImpact,
		})
	}
	return out
}

func verdict(avg Percent, counts map[PatternTag]int, dcaSequences int) string {
	bad := counts[TagPanicSell] + counts[TagFOMOBuy] + counts[TagWorstSell] + counts[TagWorstBuy]
	good := counts[TagWellTimedSell] + counts[TagWellTimedBuy]
	switch {
	case avg > 10 && bad == 0:
		return "good timing: trades tend to precede favorable moves"
	case dcaSequences > 0 && bad <= good:
		return "disciplined: recurring purchases dominate and emotional trades are rare"
	case bad > good*2 && bad >= 3:
		return "emotionally driven: reactive trades outnumber well-timed ones"
	case avg < -10:
		return "poor timing: trades tend to precede adverse moves"
	default:
		return "mixed: no strong timing edge either way"
	}
}

// recommend emits one concrete suggestion per observed habit. Rules fire
// independently; an empty list means nothing stood out.
func recommend(r *Report, counts map[PatternTag]int) []string {
	var out []string
	if n := counts[TagPanicSell]; n > 0 {
		out = append(out, fmt.Sprintf("%d panic sell(s): consider a cooling-off rule before selling into a decline", n))
	}
	if n := counts[TagFOMOBuy]; n > 0 {
		out = append(out, fmt.Sprintf("%d FOMO buy(s): avoid chasing a run-up; set entry prices in advance", n))
	}
	if counts[TagOvertrading] > 0 {
		out = append(out, "trading frequency is high for at least one instrument; each extra round trip adds fees and timing risk")
	}
	if counts[TagConcentration] > 0 {
		out = append(out, "a single instrument dominates invested capital; consider spreading purchases")
	}
	if counts[TagWashSale] > 0 {
		out = append(out, "loss sales followed by quick repurchases may be disallowed for tax purposes in many jurisdictions")
	}
	if counts[TagDividendMiss] > 0 {
		out = append(out, "selling just before ex-dividend dates forfeits declared dividends; check the calendar before exits")
	}
	if len(r.DCA) > 0 {
		out = append(out, "recurring purchases detected: the most reliable pattern in this history, worth keeping")
	}
	if r.Benchmark.Alpha < -5 && !r.Benchmark.Partial {
		out = append(out, fmt.Sprintf("the portfolio trails %s by %.1f%%; a passive position would have done better", r.Benchmark.Ticker, -float64(r.Benchmark.Alpha)))
	}
	if invested := r.Invested.InexactFloat64(); invested > 0 {
		if fees := r.TotalFees.InexactFloat64(); fees/invested > 0.01 {
			out = append(out, fmt.Sprintf("fees are %.1f%% of invested capital; a cheaper broker or fewer trades would keep more of the return", 100*fees/invested))
		}
	}
	return out
}
