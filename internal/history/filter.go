// Package history filters and summarizes a member's ledger.
package history

import (
	"strings"

	"github.com/owaste/rewards-service/internal/domain"
)

// All matches any type or status.
const All = "all"

// Filter narrows a ledger. Empty or "all" fields do not constrain; set
// fields are combined with AND.
type Filter struct {
	Search string
	Type   string
	Status string
}

// Matches reports whether a single entry passes the filter. The search term
// is a case-insensitive substring of the description or the location.
func (f Filter) Matches(t domain.Transaction) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(t.Description), term) &&
			!strings.Contains(strings.ToLower(t.Location), term) {
			return false
		}
	}
	if f.Type != "" && f.Type != All && string(t.Type) != f.Type {
		return false
	}
	if f.Status != "" && f.Status != All && string(t.Status) != f.Status {
		return false
	}
	return true
}

// Apply returns the matching entries in their original order.
func (f Filter) Apply(txns []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
