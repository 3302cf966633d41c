// Package ingest loads the raw report input. The file is read once and
// decoded with the first candidate encoding that accepts every byte, then
// parsed as comma separated text into a domain.RawTable keyed by header name.
package ingest
