// Package runtime is the in-process host environment programs execute
// against: an account ledger, atomic transactions, a program registry,
// and synchronous cross-program invocation.
//
// Execution model: instructions inside one transaction run
// sequentially against a staged copy of the ledger; the stage commits
// only when every instruction succeeds. Any failure discards the
// stage, so no partial account mutation is ever observable.
package runtime
