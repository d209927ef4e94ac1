package domain

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Page struct {
	Number int
	Size   int
}

func NewPage(pageNumber, pageSize int) Page {
	pNumber := 1
	if pageNumber > 0 {
		pNumber = pageNumber
	}

	pSize := defaultPageSize
	if pageSize > 0 {
		pSize = pageSize
	}
	if pSize > maxPageSize {
		pSize = maxPageSize
	}

	return Page{
		Number: pNumber,
		Size:   pSize,
	}
}

// Bounds returns the [from, to) range of the page over a list of n elements.
func (p Page) Bounds(n int) (int, int) {
	p = NewPage(p.Number, p.Size)
	from := (p.Number - 1) * p.Size
	if from > n {
		from = n
	}
	to := from + p.Size
	if to > n {
		to = n
	}
	return from, to
}
