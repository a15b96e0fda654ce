// Package query implements read-only transformations over a medicine
// collection: expiry-ordered listings, expiry-window filters, name search,
// and the CSV projection. Every function is a pure function of its input;
// the caller's slice is never mutated.
package query

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/domain"
)

// maxExpiry sorts records with a missing or unparsable expiry after every
// real date.
const maxExpiry = "9999-12-31"

func expiryKey(m domain.Medicine) string {
	if _, ok := m.ExpiryDate(); !ok {
		return maxExpiry
	}
	return m.Expiry
}

// SortedByExpiry returns the collection ordered by ascending expiry date.
// Records whose expiry does not parse sort last. The sort is stable:
// records sharing an expiry keep their original order.
func SortedByExpiry(col []domain.Medicine) []domain.Medicine {
	out := slices.Clone(col)
	slices.SortStableFunc(out, func(a, b domain.Medicine) int {
		return strings.Compare(expiryKey(a), expiryKey(b))
	})
	return out
}

// ExpiringWithin returns the records expiring in the inclusive window
// [today, today+days], sorted by ascending expiry. Records with an
// unparsable expiry are skipped.
func ExpiringWithin(col []domain.Medicine, today time.Time, days int) []domain.Medicine {
	limit := today.AddDate(0, 0, days)
	var out []domain.Medicine
	for _, m := range col {
		exp, ok := m.ExpiryDate()
		if !ok {
			continue
		}
		if exp.Before(today) || exp.After(limit) {
			continue
		}
		out = append(out, m)
	}
	return SortedByExpiry(out)
}

// Expired returns the records whose expiry is strictly before today, sorted
// by ascending expiry. A record expiring today is not yet expired.
func Expired(col []domain.Medicine, today time.Time) []domain.Medicine {
	var out []domain.Medicine
	for _, m := range col {
		exp, ok := m.ExpiryDate()
		if !ok {
			continue
		}
		if exp.Before(today) {
			out = append(out, m)
		}
	}
	return SortedByExpiry(out)
}

// FindByName returns the records whose name contains substr,
// case-insensitively, sorted by ascending case-folded name.
func FindByName(col []domain.Medicine, substr string) []domain.Medicine {
	q := strings.ToLower(strings.TrimSpace(substr))
	var out []domain.Medicine
	for _, m := range col {
		if strings.Contains(strings.ToLower(m.Name), q) {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Medicine) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out
}

// Header is the fixed CSV column order. Add, persistence, and export all use
// this schema.
func Header() []string {
	return []string{"name", "strength", "form", "batch", "expiry", "location", "created_at"}
}

// ExportRows projects each record into the Header column order. Absent
// optional fields become empty strings, never omitted columns.
func ExportRows(col []domain.Medicine) [][]string {
	rows := make([][]string, 0, len(col))
	for _, m := range col {
		rows = append(rows, []string{m.Name, m.Strength, m.Form, m.Batch, m.Expiry, m.Location, m.CreatedAt})
	}
	return rows
}

// WriteCSV renders the collection as CSV to w: one header row, one data row
// per record, standard quoting.
func WriteCSV(w io.Writer, col []domain.Medicine) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range ExportRows(col) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
