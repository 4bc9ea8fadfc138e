package trader

import (
	"context"
	"log"
	"sort"

	"github.com/thuva4/am-i-bad-trader/date"
	"golang.org/x/sync/errgroup"
)

// Analyze runs the whole engine over a normalized action list and a market
// bundle. It never fails on partial data: missing instruments, short price
// windows and integrity problems all degrade into markers on the report.
// The error return covers genuinely broken invocations only.
func Analyze(ctx context.Context, actions []Action, market *MarketData, cfg Config) (*Report, error) {
	r := &Report{
		GeneratedOn: date.Today(),
		Currency:    AccountCurrency(actions),
		Config:      cfg,
	}
	if market == nil {
		market = NewMarketData()
	}
	if len(actions) == 0 {
		r.TotalValue = M(0, r.Currency)
		r.Invested = M(0, r.Currency)
		r.Realized = M(0, r.Currency)
		r.TotalFees = M(0, r.Currency)
		r.Summary = BuildSummary(r)
		return r, nil
	}

	SortActions(actions)
	AdjustForSplits(actions, market)

	t := NewTracker(r.Currency)
	t.Replay(actions)
	r.Ledger = t.Ledger
	r.Invested = t.Invested
	r.Realized = t.Realized
	r.RealizedBy = t.RealizedByInstrument()
	r.TotalFees = t.TotalFees
	r.Anomalies = t.Anomalies

	trades := tradesByInstrument(actions)
	instruments := make([]string, 0, len(trades))
	for ins := range trades {
		instruments = append(instruments, ins)
	}
	sort.Strings(instruments)
	for _, ins := range instruments {
		if !market.Has(ins) {
			r.Gaps = append(r.Gaps, ins)
			log.Printf("no market data for %s, timing analysis skipped", ins)
		}
	}

	sales := make(map[string]*SaleRecord)
	for i := range t.Sales {
		sales[t.Sales[i].ActionID] = &t.Sales[i]
	}

	// Per-instrument analysis is read-only over the price series, so it
	// shards cleanly. Each worker writes only its own results slot.
	type result struct {
		scored   map[string]ScoredAction
		dca      []DCASequence
		findings []Finding
		trips    []RoundTrip
	}
	results := make([]result, len(instruments))
	g, _ := errgroup.WithContext(ctx)
	if cfg.Concurrency > 0 {
		g.SetLimit(cfg.Concurrency)
	}
	for i, name := range instruments {
		g.Go(func() error {
			list := trades[name]
			ins := market.Get(name)
			res := result{scored: make(map[string]ScoredAction, len(list))}
			var buys []*Action
			for _, a := range list {
				res.scored[a.ID] = ScoreAction(a, ins, &cfg)
				if a.Kind == KindBuy {
					buys = append(buys, a)
				}
			}
			res.dca = DetectDCA(name, buys, ins)
			res.findings = DetectPatterns(name, list, ins, sales, &cfg)
			res.trips = MatchRoundTrips(name, list)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scored := make(map[string]ScoredAction)
	for _, res := range results {
		for id, sa := range res.scored {
			scored[id] = sa
		}
		r.DCA = append(r.DCA, res.dca...)
		r.Findings = append(r.Findings, res.findings...)
		r.RoundTrips = append(r.RoundTrips, res.trips...)
	}
	r.Findings = append(r.Findings, detectConcentration(t, trades)...)
	sort.SliceStable(r.Findings, func(i, j int) bool { return r.Findings[i].Date.Before(r.Findings[j].Date) })
	suppressDCAMembers(r, scored)
	attachFlags(r, scored)

	// Every action appears in the output, scored or not.
	r.Actions = make([]ScoredAction, 0, len(actions))
	for i := range actions {
		if sa, ok := scored[actions[i].ID]; ok {
			r.Actions = append(r.Actions, sa)
		} else {
			r.Actions = append(r.Actions, ScoredAction{Action: actions[i]})
		}
	}

	r.Holdings, r.TotalValue = valueHoldings(t, actions, market)

	series := BuildValueSeries(actions, market)
	r.Series = series
	r.Risk = ComputeRisk(series, &cfg)
	r.Benchmark = CompareBenchmark(series, t, market, &cfg)
	r.Summary = BuildSummary(r)
	return r, nil
}

// tradesByInstrument groups trade actions per instrument, keeping
// chronological order and pointing into the caller's slice.
func tradesByInstrument(actions []Action) map[string][]*Action {
	out := make(map[string][]*Action)
	for i := range actions {
		a := &actions[i]
		if a.Kind.IsTrade() && a.Instrument != "" {
			out[a.Instrument] = append(out[a.Instrument], a)
		}
	}
	return out
}

// detectConcentration flags instruments whose cumulative buys exceed a
// quarter of all invested capital. It needs the whole run's totals, so it
// cannot shard per instrument like the other detectors.
func detectConcentration(t *Tracker, trades map[string][]*Action) []Finding {
	invested := t.Invested.InexactFloat64()
	if invested <= 0 {
		return nil
	}
	var out []Finding
	names := make([]string, 0, len(trades))
	for name := range trades {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		var total float64
		var last date.Date
		var ids []string
		for _, a := range trades[name] {
			if a.Kind == KindBuy {
				total += a.Total.Abs().InexactFloat64()
				last = a.Date
				ids = append(ids, a.ID)
			}
		}
		share := 100 * total / invested
		if share > concentrationPct {
			out = append(out, Finding{
				Tag:        TagConcentration,
				Instrument: name,
				ActionIDs:  ids,
				Date:       last,
				Metric:     Percent(share),
				Amount:     M(total, t.Currency),
				Detail:     "buys into this instrument exceed a quarter of all invested capital",
			})
		}
	}
	return out
}

// suppressDCAMembers marks schedule members and withdraws the emotional
// flags from them: a planned recurring buy is not FOMO and a later drop is
// the schedule's risk, not a timing mistake. Timing scores and the positive
// patterns stay.
func suppressDCAMembers(r *Report, scored map[string]ScoredAction) {
	members := make(map[string]bool)
	for _, seq := range r.DCA {
		for _, id := range seq.ActionIDs {
			members[id] = true
		}
	}
	if len(members) == 0 {
		return
	}
	for id := range members {
		if sa, ok := scored[id]; ok {
			sa.IsDCA = true
			scored[id] = sa
		}
	}
	kept := r.Findings[:0]
	for _, f := range r.Findings {
		if (f.Tag == TagFOMOBuy || f.Tag == TagWorstBuy) && len(f.ActionIDs) == 1 && members[f.ActionIDs[0]] {
			continue
		}
		kept = append(kept, f)
	}
	r.Findings = kept
}

// attachFlags copies each single-action finding's tag onto its action.
func attachFlags(r *Report, scored map[string]ScoredAction) {
	for _, f := range r.Findings {
		if len(f.ActionIDs) != 1 {
			continue
		}
		id := f.ActionIDs[0]
		sa, ok := scored[id]
		if ok && !sa.Flagged(f.Tag) {
			sa.Flags = append(sa.Flags, f.Tag)
			scored[id] = sa
		}
	}
}

// valueHoldings prices the open positions at the latest known bar.
func valueHoldings(t *Tracker, actions []Action, market *MarketData) ([]Holding, Money) {
	rates := make(map[string]float64)
	for i := range actions {
		if actions[i].Kind.IsTrade() {
			rates[actions[i].Instrument] = actions[i].Rate()
		}
	}
	total := M(0, t.Currency)
	var out []Holding
	for _, p := range t.Positions() {
		h := Holding{
			Instrument: p.Instrument,
			Shares:     p.Shares,
			CostBasis:  p.CostBasis,
			AvgCost:    p.AvgCost(),
		}
		if ins := market.Get(p.Instrument); ins != nil && ins.Prices.Len() > 0 {
			day, price := ins.Prices.Latest()
			value := tradeToAccount(price*p.Shares.InexactFloat64(), rates[p.Instrument])
			h.CurrentPrice = price
			h.CurrentValue = M(value, t.Currency)
			h.HasValue = true
			h.AsOf = day
			h.UnrealizedPnL = h.CurrentValue.Sub(p.CostBasis)
			if basis := p.CostBasis.InexactFloat64(); basis > 0 {
				h.UnrealizedPct = Percent(100 * h.UnrealizedPnL.InexactFloat64() / basis)
			}
			total = total.Add(h.CurrentValue)
		}
		out = append(out, h)
	}
	return out, total
}
