package domain

import "strings"

// Principal is an opaque caller identifier. The ledger compares principals
// but never authenticates them.
type Principal string

// ReservedPrefix marks the ledger's own accounts.
const ReservedPrefix = "ledger:"

// EscrowAccount holds the pooled funds of every open game.
const EscrowAccount Principal = "ledger:escrow"

// DefaultCustodyAccount is the settlement holding account used when none is configured.
const DefaultCustodyAccount Principal = "ledger:custody"

// ParsePrincipal trims s and returns it as a Principal; empty input yields "".
func ParsePrincipal(s string) Principal {
	return Principal(strings.TrimSpace(s))
}

func (p Principal) String() string {
	return string(p)
}

func (p Principal) IsZero() bool {
	return p == ""
}

// IsReserved reports whether p names one of the ledger's own accounts.
func (p Principal) IsReserved() bool {
	return strings.HasPrefix(string(p), ReservedPrefix)
}
