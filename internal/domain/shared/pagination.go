package shared

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// LastPage is the page query value that selects the final page.
const LastPage = "last"

// Paginator splits an ordered collection of count items into fixed-size pages.
// A collection always has at least one page, even when it is empty.
type Paginator struct {
	Count    int64
	PageSize int
}

// NewPaginator creates a paginator. Non-positive page sizes fall back to 1.
func NewPaginator(count int64, pageSize int) Paginator {
	if pageSize < 1 {
		pageSize = 1
	}
	if count < 0 {
		count = 0
	}
	return Paginator{Count: count, PageSize: pageSize}
}

// NumPages returns the number of pages, never less than 1
func (p Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	size := int64(p.PageSize)
	return int((p.Count + size - 1) / size)
}

// Clamp moves number into [1, NumPages].
func (p Paginator) Clamp(number int) int {
	if number < 1 {
		return 1
	}
	if last := p.NumPages(); number > last {
		return last
	}
	return number
}

// Resolve turns a raw page query value into a valid page number.
func (p Paginator) Resolve(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == LastPage {
		return p.NumPages()
	}
	return p.Clamp(ParsePageNumber(raw))
}

// Bounds returns the offset and limit of page number, which must already be valid.
func (p Paginator) Bounds(number int) (offset, limit int) {
	return (number - 1) * p.PageSize, p.PageSize
}

// ParsePageNumber parses a 1-based page number; anything that is not an integer yields 1.
// Integers too large for an int saturate so that Clamp still picks the nearest page.
func ParsePageNumber(raw string) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err == nil {
		return n
	}
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(raw, "-") {
			return math.MinInt
		}
		return math.MaxInt
	}
	return 1
}

// Page is one page of an ordered listing
type Page[T any] struct {
	Items              []T   `json:"items"`
	Number             int   `json:"number"`
	NumPages           int   `json:"num_pages"`
	Count              int64 `json:"count"`
	PageSize           int   `json:"page_size"`
	HasNext            bool  `json:"has_next"`
	HasPrevious        bool  `json:"has_previous"`
	NextPageNumber     int   `json:"next_page_number,omitempty"`
	PreviousPageNumber int   `json:"previous_page_number,omitempty"`
	StartIndex         int64 `json:"start_index"`
	EndIndex           int64 `json:"end_index"`
}

// NewPage builds page number of paginator p holding items.
func NewPage[T any](items []T, number int, p Paginator) Page[T] {
	if items == nil {
		items = []T{}
	}
	numPages := p.NumPages()
	page := Page[T]{
		Items:       items,
		Number:      number,
		NumPages:    numPages,
		Count:       p.Count,
		PageSize:    p.PageSize,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}
	if page.HasNext {
		page.NextPageNumber = number + 1
	}
	if page.HasPrevious {
		page.PreviousPageNumber = number - 1
	}
	if len(items) > 0 {
		page.StartIndex = int64(number-1)*int64(p.PageSize) + 1
		page.EndIndex = page.StartIndex + int64(len(items)) - 1
	}
	return page
}

// MapPage converts the items of a page while keeping its position.
func MapPage[T, U any](page Page[T], fn func(T) U) Page[U] {
	items := make([]U, len(page.Items))
	for i, item := range page.Items {
		items[i] = fn(item)
	}
	return Page[U]{
		Items:              items,
		Number:             page.Number,
		NumPages:           page.NumPages,
		Count:              page.Count,
		PageSize:           page.PageSize,
		HasNext:            page.HasNext,
		HasPrevious:        page.HasPrevious,
		NextPageNumber:     page.NextPageNumber,
		PreviousPageNumber: page.PreviousPageNumber,
		StartIndex:         page.StartIndex,
		EndIndex:           page.EndIndex,
	}
}

// PageRange lists every page number, for rendering page links.
func (p Page[T]) PageRange() []int {
	pages := make([]int, p.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
