// Package trader replays an investor's transaction history against
// historical market data and answers one question: was the timing any good?
//
// The engine is a single offline batch run over two inputs, a normalized
// action list and a market-data bundle. It produces a self-contained Report
// with portfolio state, per-trade timing scores, recurring-purchase
// schedules, behavioral pattern findings, risk metrics and a benchmark
// comparison. Partial data degrades the report, it never aborts the run.
package trader
