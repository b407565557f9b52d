// Package match pairs a myPay transaction with its originating Organizze
// transaction when no foreign key survived the initial migration. It is a
// best-effort heuristic over description, calendar day, and amount; ambiguous
// pairings are left for the operator to review via dry-run output, not
// resolved here.
package match

import (
	"math"
	"strings"

	"github.com/mypay/organizze-sync/internal/organizze"
)

// AmountTolerance absorbs the rounding drift introduced by dividing minor
// units by 100 on one side. The comparison is strict (<, not <=).
const AmountTolerance = 0.02

// Kind reports which pass produced a match, so callers can distinguish a
// normal no-match outcome from an error.
type Kind int

const (
	None Kind = iota
	Exact
	Partial
)

// Local is the local side of a comparison: the fields of a stored
// transaction the heuristic looks at. Amount is non-negative and Date is the
// calendar-day string YYYY-MM-DD.
type Local struct {
	Description string
	Date        string
	Amount      float64
}

// Find returns the first candidate matching local, scanning the whole list
// with the exact rule before trying the partial rule at all. Candidates are
// examined in input order and the first hit wins; duplicates are not
// detected.
func Find(local Local, candidates []organizze.Transaction) (*organizze.Transaction, Kind) {
	desc := normalize(local.Description)

	for i := range candidates {
		c := &candidates[i]
		if normalize(c.Description) == desc && sameDayAndAmount(local, c) {
			return c, Exact
		}
	}

	for i := range candidates {
		c := &candidates[i]
		cDesc := normalize(c.Description)
		contained := strings.Contains(cDesc, desc) || strings.Contains(desc, cDesc)
		if contained && sameDayAndAmount(local, c) {
			return c, Partial
		}
	}

	return nil, None
}

func sameDayAndAmount(local Local, c *organizze.Transaction) bool {
	return c.Date == local.Date && math.Abs(c.Amount()-local.Amount) < AmountTolerance
}

// normalize lowercases, trims, and collapses double spaces to single ones.
// The collapse is a single pass over pairs, not a full whitespace squeeze;
// both migration-era sides were normalized the same way, so matching depends
// on keeping it shallow.
func normalize(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(s)), "  ", " ")
}
