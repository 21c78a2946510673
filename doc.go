// Package portfolio is the trading core of Coachfolio, a paper-trading
// coach: a session starts with a cash balance, buys and sells sample stocks,
// and follows how its positions perform.
//
// The core functionalities include:
//   - Ledger: ApplyOrder executes a buy or a sell against a Portfolio,
//     keeping cash non negative and the weighted average cost of each
//     holding up to date. Orders either fully apply or are rejected with an
//     *OrderError, the portfolio is never left half updated.
//   - Valuation: Valuate marks holdings to market using a QuoteSource and
//     derives value, gain/loss and allocation. It never fails on a missing
//     quote and falls back to the last known price instead.
//   - Persistence: a Ledger is encoded as JSONL, an opening line followed by
//     one line per accepted order, and decoded by replaying the orders.
//
// Amounts are exact decimals. Rounding to the currency fraction only happens
// when values are printed or marshalled to JSON.
package portfolio
