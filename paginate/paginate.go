// Package paginate reconciles the small display page size the UI works with
// against the large batch size actually fetched from the backend.
package paginate

// ServerPage computes which server batch contains the given display page.
// displaySize must not exceed serverSize; callers configure them that way.
func ServerPage(displayPage, displaySize, serverSize int) int {
	if displayPage < 1 {
		displayPage = 1
	}
	if displaySize < 1 || serverSize < 1 {
		return 1
	}
	return (displayPage*displaySize + serverSize - 1) / serverSize
}

// TotalPages computes the display page count, never less than 1.
func TotalPages(effectiveCount, displaySize int) int {
	if displaySize < 1 {
		return 1
	}
	pages := (effectiveCount + displaySize - 1) / displaySize
	if pages < 1 {
		return 1
	}
	return pages
}

// EffectiveCount picks the count that page totals are computed from. The
// three-tier order matters: an active, non-trivial filter makes the filtered
// length authoritative; otherwise the server-reported total wins; the raw
// fetched length is the last resort.
func EffectiveCount(filteredLen, serverTotal, rawLen int, filtersActive bool) int {
	if filtersActive {
		return filteredLen
	}
	if serverTotal > 0 {
		return serverTotal
	}
	return rawLen
}

// Slice returns the display page's window of items. An out-of-range page
// clamps to page 1 instead of returning an empty slice with no way back.
func Slice[T any](items []T, displayPage, displaySize int) []T {
	if displaySize < 1 {
		return items
	}
	if displayPage < 1 {
		displayPage = 1
	}
	start := (displayPage - 1) * displaySize
	if start >= len(items) {
		start = 0
	}
	end := start + displaySize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// PageState holds the current display page for one list view. It is built
// and injected by the owner of the view, never shared as a singleton.
type PageState struct {
	current     int
	displaySize int
}

func NewPageState(displaySize int) *PageState {
	if displaySize < 1 {
		displaySize = 10
	}
	return &PageState{current: 1, displaySize: displaySize}
}

func (p *PageState) Current() int     { return p.current }
func (p *PageState) DisplaySize() int { return p.displaySize }

// Set moves to page n, clamped to [1, totalPages].
func (p *PageState) Set(n, totalPages int) {
	if n < 1 {
		n = 1
	}
	if totalPages >= 1 && n > totalPages {
		n = totalPages
	}
	p.current = n
}

// Clamp restores 1 <= current <= totalPages after the result set shrank,
// e.g. when filters cut the list below the page the user was on.
func (p *PageState) Clamp(totalPages int) {
	if totalPages < 1 {
		totalPages = 1
	}
	if p.current > totalPages {
		p.current = totalPages
	}
	if p.current < 1 {
		p.current = 1
	}
}
