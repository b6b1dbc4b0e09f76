// Package report shapes fetched expense records into filtered lists,
// per-field and status totals, and a delimiter-safe export table. It holds
// no state and never touches a store: callers pass in the records they own.
package report

import (
	"sort"

	"despesas/internal/core"
)

// Order controls date sorting of a filtered record list.
type Order int

const (
	OrderNone Order = iota
	OrderAscending
	OrderDescending
)

// ParseOrder maps the query-string values to an Order. Anything
// unrecognized means no sorting.
func ParseOrder(s string) Order {
	switch s {
	case "asc":
		return OrderAscending
	case "desc":
		return OrderDescending
	default:
		return OrderNone
	}
}

// Query is a filter over a caller-owned record set. A date range applies
// only when both bounds are present: exactly one bound suppresses every
// record, mirroring the report screen's generate guard.
type Query struct {
	Property  string
	StartDate core.Date
	EndDate   core.Date
	Status    core.Status
}

// Filter returns the subset of records matching q. Statuses are normalized
// before comparison, so records stored without a status match "a_pagar".
func Filter(records []core.Record, q Query) []core.Record {
	hasStart := !q.StartDate.IsZero()
	hasEnd := !q.EndDate.IsZero()
	if hasStart != hasEnd {
		// Partial range: no report rather than an open-ended filter.
		return nil
	}

	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		if q.Property != "" && r.Property != q.Property {
			continue
		}
		if hasStart {
			if r.Date.Before(q.StartDate.Time) || r.Date.After(q.EndDate.Time) {
				continue
			}
		}
		if q.Status != "" && core.NormalizeStatus(r.Status) != q.Status {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Sort returns a date-ordered copy of records. Ties keep input order; there
// is no secondary key.
func Sort(records []core.Record, order Order) []core.Record {
	out := make([]core.Record, len(records))
	copy(out, records)
	switch order {
	case OrderAscending:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	case OrderDescending:
		sort.SliceStable(out, func(i, j int) bool { return out[j].Date.Before(out[i].Date.Time) })
	}
	return out
}

// RecordTotal sums the record's populated amounts restricted to its
// property's schema. Fields outside the schema are ignored even when
// present, which protects totals from stale or legacy fields; unknown
// properties total zero.
func RecordTotal(r core.Record) core.Money {
	var total core.Money
	for _, key := range core.FieldKeysFor(r.Property) {
		if m, ok := r.Fields[key]; ok {
			total = total.Add(m)
		}
	}
	return total
}

// Columns returns the union of schema-valid populated field keys across
// records, ordered by first appearance of each record's schema. The result
// is the default column order for exports.
func Columns(records []core.Record) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range records {
		for _, key := range core.FieldKeysFor(r.Property) {
			if m, ok := r.Fields[key]; ok && m.Cents != 0 && !seen[key] {
				seen[key] = true
				cols = append(cols, key)
			}
		}
	}
	return cols
}

// ColumnTotals sums each schema-valid field independently across records.
// Records where a field is inapplicable contribute zero. An empty input
// yields an empty map.
func ColumnTotals(records []core.Record) map[string]core.Money {
	totals := make(map[string]core.Money)
	for _, r := range records {
		for _, key := range core.FieldKeysFor(r.Property) {
			if m, ok := r.Fields[key]; ok && m.Cents != 0 {
				totals[key] = totals[key].Add(m)
			}
		}
	}
	return totals
}

// Totals splits record totals by payment status.
type Totals struct {
	Paid        core.Money
	Unpaid      core.Money
	Grand       core.Money
	PaidCount   int
	UnpaidCount int
}

// StatusTotals partitions records into paid and unpaid and sums their
// record totals. Absent statuses count as unpaid.
func StatusTotals(records []core.Record) Totals {
	var t Totals
	for _, r := range records {
		total := RecordTotal(r)
		t.Grand = t.Grand.Add(total)
		if core.NormalizeStatus(r.Status) == core.StatusPaid {
			t.Paid = t.Paid.Add(total)
			t.PaidCount++
		} else {
			t.Unpaid = t.Unpaid.Add(total)
			t.UnpaidCount++
		}
	}
	return t
}
