// Package filter applies the dashboard's client-side filters to a cached
// collection and recomputes the badge counts, without ever mutating the
// canonical collection.
package filter

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"druckerei-client/logger"
)

// State is the full set of user-selectable filters. Zero values mean
// "match all"; no field constrains the result unless it is set.
type State struct {
	Search   string `json:"search,omitempty"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
	Status   string `json:"status,omitempty"`
	Category string `json:"category,omitempty"`

	MinAmount *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount *decimal.Decimal `json:"max_amount,omitempty"`

	IsPaid     *bool `json:"is_paid,omitempty"`
	HasBalance *bool `json:"has_balance,omitempty"`
}

// Active reports whether any filter actually constrains the collection.
// Pagination math treats the filtered length as authoritative only then.
func (s State) Active() bool {
	return strings.TrimSpace(s.Search) != "" ||
		s.DateFrom != "" || s.DateTo != "" ||
		s.Status != "" || s.Category != "" ||
		s.MinAmount != nil || s.MaxAmount != nil ||
		s.IsPaid != nil || s.HasBalance != nil
}

// QueryValues renders the state as backend query parameters.
func (s State) QueryValues() url.Values {
	q := url.Values{}
	if v := strings.TrimSpace(s.Search); v != "" {
		q.Set("search", v)
	}
	if s.DateFrom != "" {
		q.Set("from", s.DateFrom)
	}
	if s.DateTo != "" {
		q.Set("to", s.DateTo)
	}
	if s.Status != "" {
		q.Set("status", s.Status)
	}
	if s.Category != "" {
		q.Set("category", s.Category)
	}
	return q
}

// Accessor adapts an entity type to the pipeline. SearchFields should
// include nested item text (an item hit surfaces the whole entity).
type Accessor[T any] struct {
	SearchFields func(T) []string
	Date         func(T) string
	Status       func(T) string
	Category     func(T) string
	Amount       func(T) decimal.Decimal
	IsPaid       func(T) bool
	HasBalance   func(T) bool
}

// Result is the visible subset plus the badge counts. Counts are computed
// over the whole input collection, not the filtered one: badges keep showing
// bucket totals while a filter narrows the table.
type Result[T any] struct {
	Visible  []T
	Counts   map[string]int
	FellBack bool
}

// Count bucket keys.
const (
	CountAll         = "all"
	CountUnknownDate = "unknown_date"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02.01.2006",
}

// ParseDate parses the backend's date strings. The bool is false for
// unparseable input; callers must not let such records vanish silently.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Apply runs the AND-composed predicate chain over items. The input slice is
// never modified and two passes with the same state yield the same result.
//
// Records whose date does not parse are excluded from date-bounded output
// but still counted under the "all" bucket, so misformatted backend data is
// never silently lost. If filtering leaves nothing while the input was
// non-empty, the full collection is returned instead (FellBack=true): the
// dashboard deliberately never shows "no data" when real data exists.
func Apply[T any](items []T, s State, acc Accessor[T]) Result[T] {
	res := Result[T]{
		Visible: make([]T, 0, len(items)),
		Counts:  map[string]int{CountAll: len(items)},
	}

	from, fromOK := ParseDate(s.DateFrom)
	to, toOK := ParseDate(s.DateTo)
	dateBounded := (s.DateFrom != "" && fromOK) || (s.DateTo != "" && toOK)

	search := strings.ToLower(strings.TrimSpace(s.Search))
	unparseable := 0

	for _, it := range items {
		if acc.Status != nil {
			res.Counts[acc.Status(it)]++
		}

		if acc.Date != nil {
			if _, ok := ParseDate(acc.Date(it)); !ok {
				res.Counts[CountUnknownDate]++
			}
		}

		if !matches(it, s, acc, search, dateBounded, from, fromOK, to, toOK, &unparseable) {
			continue
		}
		res.Visible = append(res.Visible, it)
	}

	if unparseable > 0 {
		log := logger.WithComponent("filter")
		log.Warn().
			Int("records", unparseable).
			Msg("records with unparseable dates excluded from date-bounded view")
	}

	if len(res.Visible) == 0 && len(items) > 0 {
		res.Visible = append([]T(nil), items...)
		res.FellBack = true
	}
	return res
}

func matches[T any](it T, s State, acc Accessor[T], search string,
	dateBounded bool, from time.Time, fromOK bool, to time.Time, toOK bool,
	unparseable *int) bool {

	if search != "" && acc.SearchFields != nil {
		hit := false
		for _, f := range acc.SearchFields(it) {
			if strings.Contains(strings.ToLower(f), search) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}

	if dateBounded && acc.Date != nil {
		d, ok := ParseDate(acc.Date(it))
		if !ok {
			*unparseable++
			return false
		}
		if fromOK && d.Before(from) {
			return false
		}
		if toOK && d.After(to.Add(24*time.Hour-time.Nanosecond)) {
			return false
		}
	}

	if s.Status != "" && acc.Status != nil && acc.Status(it) != s.Status {
		return false
	}
	if s.Category != "" && acc.Category != nil && acc.Category(it) != s.Category {
		return false
	}

	if acc.Amount != nil {
		amt := acc.Amount(it)
		if s.MinAmount != nil && amt.LessThan(*s.MinAmount) {
			return false
		}
		if s.MaxAmount != nil && amt.GreaterThan(*s.MaxAmount) {
			return false
		}
	}

	if s.IsPaid != nil && acc.IsPaid != nil && acc.IsPaid(it) != *s.IsPaid {
		return false
	}
	if s.HasBalance != nil && acc.HasBalance != nil && acc.HasBalance(it) != *s.HasBalance {
		return false
	}
	return true
}
