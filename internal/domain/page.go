package domain

// Page describes one slice of a paginated result set.
type Page struct {
	PageNum    int `json:"page_num"`
	PageSize   int `json:"page_size"`
	TotalSize  int `json:"total_size"`
	TotalPages int `json:"total_pages"`
}

// NewPage builds a page descriptor. TotalPages is ceil(totalSize/pageSize);
// a zero page size yields zero pages rather than dividing by zero.
func NewPage(pageNum, pageSize, totalSize int) Page {
	p := Page{
		PageNum:   pageNum,
		PageSize:  pageSize,
		TotalSize: totalSize,
	}
	if pageSize > 0 {
		p.TotalPages = (totalSize + pageSize - 1) / pageSize
	}
	return p
}

func (p Page) HasNext() bool {
	return p.PageNum < p.TotalPages
}

func (p Page) HasPrev() bool {
	return p.PageNum > 1
}

// Offset is the number of rows to skip for this page.
func (p Page) Offset() int {
	return (p.PageNum - 1) * p.PageSize
}
