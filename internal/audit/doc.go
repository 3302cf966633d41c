// Package audit keeps a SQLite ledger of report runs: when each run
// happened, what it read and wrote, and how many rows each cleaning step
// removed.
package audit
