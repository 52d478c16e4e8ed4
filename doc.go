// Package carteira computes the Brazilian capital gains tax of an individual
// investor trading on the stock exchange.
//
// The engine turns the chronological ledger of buy and sell operations of an
// investor into:
//   - Positions: the quantity and weighted average cost of every ticker.
//   - Closed trades: the realized result of every sell, split into its day
//     trade and swing trade portions.
//   - Monthly results: sales, gains, exemption, loss carry-forward, taxes and
//     withholding (IRRF) of every competence month.
//   - DARFs: the payment guides derived from the monthly results.
//
// Everything is recomputed from scratch by a single forward pass over the
// ledger (see Compute) whenever the ledger changes. The Service shards the
// investors, each one with its own lock, and persists their ledgers through
// a Store (JSONL files or sqlite).
//
// This package serves as the foundational logic for the `carteira`
// command-line tool and its HTTP server.
package carteira
