package pgmodel

// Pager is one page of entities together with the total number of matching rows.
type Pager[E any] struct {
	Items      []E
	Count      int64
	Page       int
	MaxPerPage int
}

// NewPager returns the page of number page holding items out of count matching rows.
func NewPager[E any](items []E, count int64, page, maxPerPage int) *Pager[E] {
	return &Pager[E]{Items: items, Count: count, Page: page, MaxPerPage: maxPerPage}
}

// TotalPages returns the number of pages needed to hold Count rows. It is 0 when there are no rows.
func (p *Pager[E]) TotalPages() int {
	if p.MaxPerPage <= 0 || p.Count <= 0 {
		return 0
	}
	return int((p.Count + int64(p.MaxPerPage) - 1) / int64(p.MaxPerPage))
}

// LastPage returns the number of the last page. An empty result still has page 1.
func (p *Pager[E]) LastPage() int {
	if n := p.TotalPages(); n > 1 {
		return n
	}
	return 1
}

// Offset returns the number of rows before the first row of this page.
func (p *Pager[E]) Offset() int64 {
	if p.Page < 1 {
		return 0
	}
	return int64(p.MaxPerPage) * int64(p.Page-1)
}

// ResultMin returns the 1-based position of the first row of this page, or 0 if the page is empty.
func (p *Pager[E]) ResultMin() int64 {
	if len(p.Items) == 0 {
		return 0
	}
	return p.Offset() + 1
}

// ResultMax returns the 1-based position of the last row of this page, or 0 if the page is empty.
func (p *Pager[E]) ResultMax() int64 {
	if len(p.Items) == 0 {
		return 0
	}
	return p.Offset() + int64(len(p.Items))
}

func (p *Pager[E]) IsFirst() bool {
	return p.Page <= 1
}

func (p *Pager[E]) IsLast() bool {
	return p.Page >= p.LastPage()
}

func (p *Pager[E]) HasNext() bool {
	return !p.IsLast()
}

func (p *Pager[E]) HasPrevious() bool {
	return !p.IsFirst()
}

// Len returns the number of entities on this page.
func (p *Pager[E]) Len() int {
	return len(p.Items)
}
