// Package finbook implements the consistency engine of a personal ledger.
//
// A Book is the single aggregate: cash accounts, counterparties, the
// transaction history and the investable assets. Every balance and every
// profit-or-loss figure is derived from the history of user-entered events,
// never written directly. Edits and deletions go through a reverse-then-apply
// path on the ledger, and an asset's state is always the result of replaying
// its complete trade history with a weighted-average-cost algorithm, so a
// retroactive change to an old trade can never leave stale derived numbers
// behind.
//
// The engine performs no I/O. Persistence, rendering and the assistant are
// external callers living in the store, renderer, cmd and agent packages.
package finbook
