package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ISODate is the layout accepted for user supplied dates.
const ISODate = "2006-01-02"

type (
	// Date is a calendar date anchored at midnight UTC.
	Date struct {
		time.Time
	}

	// Transaction is one dated, categorized monetary entry.
	Transaction struct {
		ID          string
		Date        Date
		Category    string
		Amount      Money
		Description string
	}

	// Table is an ordered sequence of transactions. It is never mutated in
	// place; filtering returns a new Table.
	Table []Transaction
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyTable    = errors.New("empty table")
)

// layouts tried by ParseFlexibleDate, most common first.
var layouts = []string{
	ISODate,
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a strict YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ISODate, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// ParseFlexibleDate accepts YYYY-MM-DD and a handful of other common
// spreadsheet export layouts. Any time of day is dropped.
func ParseFlexibleDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// EndOfMonth returns the last calendar day of d's month.
func (d Date) EndOfMonth() Date {
	return Date{Time: time.Date(d.Year(), d.Time.Month()+1, 0, 0, 0, 0, 0, time.UTC)}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(ISODate)
}

// Amounts returns the amount column as float64 values in table order.
func (t Table) Amounts() []float64 {
	out := make([]float64, len(t))
	for i, tx := range t {
		out[i] = tx.Amount.Float64()
	}
	return out
}
