// Package filter narrows a table by category and inclusive date bounds.
package filter

import (
	"strings"

	"expense-analyzer/internal/core"
)

// Criteria holds optional predicates. Zero values impose no constraint.
type Criteria struct {
	Category string
	From     *core.Date
	To       *core.Date
}

// ParseCriteria builds Criteria from raw option values. Dates must be
// YYYY-MM-DD; the first bad one is reported as a DateFormatError.
func ParseCriteria(category, from, to string) (Criteria, error) {
	c := Criteria{Category: strings.TrimSpace(category)}
	var err error
	if c.From, err = parseBound(from); err != nil {
		return Criteria{}, err
	}
	if c.To, err = parseBound(to); err != nil {
		return Criteria{}, err
	}
	return c, nil
}

func parseBound(s string) (*core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return nil, &core.DateFormatError{Value: s}
	}
	return &d, nil
}

// IsZero reports whether no predicate is set.
func (c Criteria) IsZero() bool {
	return c.Category == "" && c.From == nil && c.To == nil
}

// Match reports whether tx satisfies every supplied predicate.
func (c Criteria) Match(tx core.Transaction) bool {
	if c.Category != "" && !strings.EqualFold(tx.Category, c.Category) {
		return false
	}
	if c.From != nil && tx.Date.Before(c.From.Time) {
		return false
	}
	if c.To != nil && tx.Date.After(c.To.Time) {
		return false
	}
	return true
}

// Apply returns a new table with the rows matching c, in their original order.
func Apply(table core.Table, c Criteria) core.Table {
	if c.IsZero() {
		return append(make(core.Table, 0, len(table)), table...)
	}
	out := make(core.Table, 0, len(table))
	for _, tx := range table {
		if c.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}
