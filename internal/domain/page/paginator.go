// Package page computes pagination windows for search results.
package page

// Paginator is the visible page window for a result set. It is a pure
// function of its inputs; see New.
type Paginator struct {
	NumberOfPages int   `json:"numberOfPages"`
	CurrentPage   int   `json:"currentPage"`
	Start         int   `json:"start"`
	End           int   `json:"end"`
	Pages         []int `json:"pages"`
}

// New computes the page window for totalResults hits viewed at currentPage
// with pageSize results per page, showing at most maxVisible page links.
// currentPage is taken as supplied and is not clamped to the total.
// With zero results the window is empty (start 1, end 0).
func New(totalResults, currentPage, pageSize, maxVisible int) Paginator {
	if pageSize < 1 {
		pageSize = 1
	}
	if currentPage < 1 {
		currentPage = 1
	}
	if maxVisible < 1 {
		maxVisible = 1
	}

	numberOfPages := (totalResults + pageSize - 1) / pageSize

	var start, end int
	if numberOfPages < maxVisible {
		start, end = 1, numberOfPages
	} else {
		end = currentPage + (maxVisible+1)/2
		if end < maxVisible {
			end = maxVisible
		}
		if end > numberOfPages {
			end = numberOfPages
		}
		start = end - maxVisible + 1
		if start < 1 {
			start = 1
		}
	}

	pages := make([]int, 0, maxVisible)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}

	return Paginator{
		NumberOfPages: numberOfPages,
		CurrentPage:   currentPage,
		Start:         start,
		End:           end,
		Pages:         pages,
	}
}
