package filter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	id       string
	supplier string
	items    []string
	date     string
	status   string
	category string
	amount   decimal.Decimal
	paid     bool
}

func recAccessor() Accessor[record] {
	return Accessor[record]{
		SearchFields: func(r record) []string {
			return append([]string{r.supplier}, r.items...)
		},
		Date:       func(r record) string { return r.date },
		Status:     func(r record) string { return r.status },
		Category:   func(r record) string { return r.category },
		Amount:     func(r record) decimal.Decimal { return r.amount },
		IsPaid:     func(r record) bool { return r.paid },
		HasBalance: func(r record) bool { return !r.paid },
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tenRecords() []record {
	out := []record{
		{id: "1", supplier: "Acme Corp", date: "2026-01-10", status: "unpaid", category: "paper", amount: d("100")},
		{id: "2", supplier: "Papier Müller", items: []string{"acme-branded ink"}, date: "2026-01-12", status: "paid", category: "ink", amount: d("200"), paid: true},
		{id: "3", supplier: "ACME South", date: "2026-02-01", status: "partially_paid", category: "paper", amount: d("300")},
	}
	for i := 4; i <= 10; i++ {
		out = append(out, record{
			id: string(rune('0' + i)), supplier: "Other", date: "2026-03-01",
			status: "unpaid", category: "plates", amount: d("50"),
		})
	}
	return out
}

func TestApplySearchCaseInsensitiveAcrossFields(t *testing.T) {
	res := Apply(tenRecords(), State{Search: "acme"}, recAccessor())

	// "Acme Corp" and "ACME South" by supplier, "acme-branded ink" by item text.
	require.Len(t, res.Visible, 3)
	assert.False(t, res.FellBack)
	assert.Equal(t, 10, res.Counts[CountAll], "counts cover the whole collection, not the filtered view")
	assert.Equal(t, 8, res.Counts["unpaid"])
	assert.Equal(t, 1, res.Counts["paid"])
	assert.Equal(t, 1, res.Counts["partially_paid"])
}

func TestApplyIsIdempotent(t *testing.T) {
	in := tenRecords()
	s := State{Search: "acme"}
	first := Apply(in, s, recAccessor())
	second := Apply(in, s, recAccessor())
	assert.Equal(t, first.Visible, second.Visible)
	assert.Equal(t, first.Counts, second.Counts)
	assert.Len(t, in, 10, "input is never modified")
}

func TestApplyDateBoundsInclusive(t *testing.T) {
	in := tenRecords()
	res := Apply(in, State{DateFrom: "2026-01-10", DateTo: "2026-01-12"}, recAccessor())
	require.Len(t, res.Visible, 2)
	assert.Equal(t, "1", res.Visible[0].id)
	assert.Equal(t, "2", res.Visible[1].id, "to-bound covers the whole day")
}

func TestApplyUnparseableDates(t *testing.T) {
	in := []record{
		{id: "ok", date: "2026-01-10", status: "unpaid"},
		{id: "bad", date: "n/a", status: "unpaid"},
	}
	res := Apply(in, State{DateFrom: "2026-01-01"}, recAccessor())

	// Excluded from the date-bounded view but never lost from the counts.
	require.Len(t, res.Visible, 1)
	assert.Equal(t, "ok", res.Visible[0].id)
	assert.Equal(t, 2, res.Counts[CountAll])
	assert.Equal(t, 1, res.Counts[CountUnknownDate])

	// Without date bounds the bad record stays visible.
	res = Apply(in, State{}, recAccessor())
	assert.Len(t, res.Visible, 2)
}

func TestApplyAmountBounds(t *testing.T) {
	min, max := d("100"), d("250")
	res := Apply(tenRecords(), State{MinAmount: &min, MaxAmount: &max}, recAccessor())
	require.Len(t, res.Visible, 2)
	assert.Equal(t, "1", res.Visible[0].id)
	assert.Equal(t, "2", res.Visible[1].id)
}

func TestApplyPaidFlag(t *testing.T) {
	paid := true
	res := Apply(tenRecords(), State{IsPaid: &paid}, recAccessor())
	require.Len(t, res.Visible, 1)
	assert.Equal(t, "2", res.Visible[0].id)
}

func TestApplyZeroResultFallback(t *testing.T) {
	in := tenRecords()
	res := Apply(in, State{Search: "no such supplier"}, recAccessor())
	assert.True(t, res.FellBack)
	assert.Len(t, res.Visible, len(in), "full collection shown instead of an empty table")

	// Empty input never triggers the fallback.
	res = Apply(nil, State{Search: "x"}, recAccessor())
	assert.False(t, res.FellBack)
	assert.Empty(t, res.Visible)
}

func TestApplyFiltersCompose(t *testing.T) {
	res := Apply(tenRecords(), State{Search: "acme", Category: "paper"}, recAccessor())
	require.Len(t, res.Visible, 2)
	for _, r := range res.Visible {
		assert.Equal(t, "paper", r.category)
	}
}

func TestStateActive(t *testing.T) {
	assert.False(t, State{}.Active())
	assert.False(t, State{Search: "   "}.Active(), "whitespace-only search is not a filter")
	assert.True(t, State{Search: "x"}.Active())
	assert.True(t, State{Status: "paid"}.Active())
	v := false
	assert.True(t, State{HasBalance: &v}.Active(), "a pointer filter set to false still constrains")
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2026-01-10", true},
		{"2026-01-10T12:00:00Z", true},
		{"2026-01-10 12:00:00", true},
		{"10.01.2026", true},
		{"", false},
		{"n/a", false},
		{"tomorrow", false},
	}
	for _, tt := range tests {
		_, ok := ParseDate(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
	}
}
