// Package id generates order identifiers.
package id

import "github.com/oklog/ulid/v2"

// New returns a ULID string. ULIDs sort lexicographically by creation time,
// which keeps the order ledger naturally ordered under its text primary key.
func New() string {
	return ulid.Make().String()
}
