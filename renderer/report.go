// Package renderer turns an analysis Report into human-facing artifacts:
// a markdown document and a value chart.
package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	trader "github.com/thuva4/am-i-bad-trader"
)

// ReportMarkdown renders the whole report as a markdown document.
func ReportMarkdown(r *trader.Report) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Trade Timing Report, %s", r.GeneratedOn))
	doc.PlainText(fmt.Sprintf("Verdict: **%s**", r.Summary.Verdict))
	doc.PlainText("")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Metric", "Value"},
		Rows: [][]string{
			{"Holdings value", r.TotalValue.String()},
			{"Invested", r.Invested.String()},
			{"Realized P&L", r.Realized.SignedString()},
			{"Dividends received", r.Ledger.Dividends.String()},
			{"Fees paid", r.TotalFees.String()},
			{"Average timing score", fmt.Sprintf("%.1f", float64(r.Summary.AvgTimingScore))},
		},
	})

	holdingsSection(doc, r)
	timingSection(doc, r)
	dcaSection(doc, r)
	findingsSection(doc, r)
	riskSection(doc, r)
	recommendationsSection(doc, r)
	anomaliesSection(doc, r)

	return doc.String()
}

func holdingsSection(doc *md.Markdown, r *trader.Report) {
	if len(r.Holdings) == 0 {
		return
	}
	doc.H2("Holdings")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Ticker", "Shares", "Cost Basis", "Value", "Unrealized"},
	}
	for _, h := range r.Holdings {
		value, unreal := "n/a", "n/a"
		if h.HasValue {
			value = h.CurrentValue.String()
			unreal = fmt.Sprintf("%s (%s)", h.UnrealizedPnL.SignedString(), h.UnrealizedPct.SignedString())
		}
		table.Rows = append(table.Rows, []string{h.Instrument, h.Shares.String(), h.CostBasis.String(), value, unreal})
	}
	doc.Table(table)
	if len(r.Gaps) > 0 {
		doc.PlainText(fmt.Sprintf("No market data for: %v. These positions are tracked but not valued.", r.Gaps))
	}
}

func timingSection(doc *md.Markdown, r *trader.Report) {
	scored := r.ScoredTrades()
	if len(scored) == 0 {
		return
	}
	doc.H2("Timing")
	doc.PlainText(fmt.Sprintf("%d trades scored. Positive means the trade preceded a favorable move.", len(scored)))

	if len(r.Summary.BestTrades) > 0 {
		doc.H3("Best")
		doc.Table(tradeRefTable(r.Summary.BestTrades))
	}
	if len(r.Summary.WorstTrades) > 0 {
		doc.H3("Worst")
		doc.Table(tradeRefTable(r.Summary.WorstTrades))
	}
}

func tradeRefTable(refs []trader.TradeRef) md.TableSet {
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Ticker", "Action", "Score", "Impact"},
	}
	for _, ref := range refs {
		table.Rows = append(table.Rows, []string{
			ref.Ticker, string(ref.Kind), fmt.Sprintf("%.1f", float64(ref.Score)), ref.Impact.String(),
		})
	}
	return table
}

func dcaSection(doc *md.Markdown, r *trader.Report) {
	if len(r.DCA) == 0 {
		return
	}
	doc.H2("Recurring Purchases")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Ticker", "Interval", "Buys", "Median Amount", "Consistency"},
	}
	for _, s := range r.DCA {
		table.Rows = append(table.Rows, []string{
			s.Instrument, s.IntervalLabel, fmt.Sprintf("%d", len(s.ActionIDs)),
			s.MedianAmount.String(), s.Consistency.String(),
		})
	}
	doc.Table(table)
	for _, s := range r.DCA {
		if s.HasReturns {
			doc.PlainText(fmt.Sprintf("%s: averaging in returned %s against %s for a day-one lump sum.",
				s.Instrument, s.DCAReturn.SignedString(), s.LumpSumReturn.SignedString()))
		}
	}
}

func findingsSection(doc *md.Markdown, r *trader.Report) {
	if len(r.Findings) == 0 {
		return
	}
	doc.H2("Patterns")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft},
		Header:    []string{"Date", "Pattern", "Ticker", "Detail"},
	}
	for _, f := range r.Findings {
		table.Rows = append(table.Rows, []string{f.Date.String(), string(f.Tag), f.Instrument, f.Detail})
	}
	doc.Table(table)
}

func riskSection(doc *md.Markdown, r *trader.Report) {
	doc.H2("Risk & Benchmark")
	if r.Risk.Partial {
		doc.PlainText("Not enough daily data for risk metrics.")
	} else {
		dd := r.Risk.MaxDrawdown
		drawdown := fmt.Sprintf("%.1f%% (peak %s, trough %s)", float64(dd.Pct), dd.PeakDate, dd.TroughDate)
		if dd.HasRecovery {
			drawdown += fmt.Sprintf(", recovered %s", dd.RecoveryDate)
		}
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Metric", "Value"},
			Rows: [][]string{
				{"Annualized volatility", r.Risk.Volatility.String()},
				{"Sharpe", fmt.Sprintf("%.2f", r.Risk.Sharpe)},
				{"Sortino", fmt.Sprintf("%.2f", r.Risk.Sortino)},
				{"Max drawdown", drawdown},
				{"Win rate", r.Risk.Daily.WinRate.String()},
				{"Best day", fmt.Sprintf("%s (%s)", r.Risk.Daily.Best.SignedString(), r.Risk.Daily.BestDate)},
				{"Worst day", fmt.Sprintf("%s (%s)", r.Risk.Daily.Worst.SignedString(), r.Risk.Daily.WorstDate)},
			},
		})
	}
	if r.Benchmark.Partial {
		doc.PlainText(fmt.Sprintf("No usable %s data for the benchmark comparison.", r.Benchmark.Ticker))
		return
	}
	doc.PlainText(fmt.Sprintf("Over %.1f years the portfolio returned %s against %s for buy-and-hold %s: alpha %s (CAGR %s vs %s).",
		r.Benchmark.Years,
		r.Benchmark.PortfolioReturn.SignedString(),
		r.Benchmark.BenchmarkReturn.SignedString(),
		r.Benchmark.Ticker,
		r.Benchmark.Alpha.SignedString(),
		r.Benchmark.PortfolioCAGR.SignedString(),
		r.Benchmark.BenchmarkCAGR.SignedString(),
	))
	if len(r.Benchmark.Monthly) > 0 {
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
			Header:    []string{"Month", "Portfolio", r.Benchmark.Ticker},
		}
		for _, p := range r.Benchmark.Monthly {
			table.Rows = append(table.Rows, []string{p.Month, p.Portfolio.SignedString(), p.Benchmark.SignedString()})
		}
		doc.Table(table)
	}
}

func recommendationsSection(doc *md.Markdown, r *trader.Report) {
	if len(r.Summary.Recommendations) == 0 {
		return
	}
	doc.H2("Recommendations")
	doc.BulletList(r.Summary.Recommendations...)
}

func anomaliesSection(doc *md.Markdown, r *trader.Report) {
	if len(r.Anomalies) == 0 {
		return
	}
	doc.H2("Data Anomalies")
	for _, a := range r.Anomalies {
		doc.PlainText(fmt.Sprintf("- %s %s: %s", a.Date, a.Kind, a.Detail))
	}
}
