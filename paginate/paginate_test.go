package paginate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerPage(t *testing.T) {
	tests := []struct {
		name        string
		displayPage int
		want        int
	}{
		{"page 1", 1, 1},
		{"page 7 still in first batch", 7, 1},
		{"page 20 is the batch boundary", 20, 1},
		{"page 21 needs the second batch", 21, 2},
		{"page 40", 40, 2},
		{"page 41", 41, 3},
		{"page below 1 clamps", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ServerPage(tt.displayPage, 10, 200))
		})
	}
}

func TestServerPageRoundTrip(t *testing.T) {
	// Every display page must land inside the batch computed for it.
	displaySize, serverSize := 10, 200
	perBatch := serverSize / displaySize
	for page := 1; page <= 500; page++ {
		batch := ServerPage(page, displaySize, serverSize)
		first := (batch-1)*perBatch + 1
		last := batch * perBatch
		assert.GreaterOrEqual(t, page, first, "page %d vs batch %d", page, batch)
		assert.LessOrEqual(t, page, last, "page %d vs batch %d", page, batch)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count, size, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{100, 10, 10},
		{101, 10, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.count, tt.size), "count=%d size=%d", tt.count, tt.size)
	}
}

func TestEffectiveCount(t *testing.T) {
	// Active filters make the filtered length authoritative, even when the
	// server total is larger.
	assert.Equal(t, 3, EffectiveCount(3, 500, 200, true))
	// Inactive filters prefer the server total.
	assert.Equal(t, 500, EffectiveCount(200, 500, 200, false))
	// A zero server total falls through to the raw length.
	assert.Equal(t, 200, EffectiveCount(200, 0, 200, false))
}

func TestSlice(t *testing.T) {
	items := make([]int, 95)
	for i := range items {
		items[i] = i + 1
	}

	got := Slice(items, 1, 10)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, got)

	got = Slice(items, 10, 10)
	assert.Equal(t, []int{91, 92, 93, 94, 95}, got, "last page may be short")

	// Out-of-range pages clamp back to page 1 rather than going blank.
	got = Slice(items, 100, 10)
	assert.Equal(t, 1, got[0])

	assert.Empty(t, Slice([]int{}, 1, 10))
}

func TestPageStateClamp(t *testing.T) {
	p := NewPageState(10)
	p.Set(7, 10)
	assert.Equal(t, 7, p.Current())

	// Result set shrank below the current page.
	p.Clamp(2)
	assert.Equal(t, 2, p.Current())

	p.Set(50, 10)
	assert.Equal(t, 10, p.Current(), "Set clamps to totalPages")

	p.Set(0, 10)
	assert.Equal(t, 1, p.Current())
}
