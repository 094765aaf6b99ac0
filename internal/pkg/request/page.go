package request

// Page holds the offset contract shared by every list endpoint:
// `from` is a zero-based page number and `size` the page length.
// The row offset is always from*size.
type Page struct {
	From int `form:"from,default=0" binding:"gte=0"`
	Size int `form:"size,default=10" binding:"gt=0"`
}

// Offset returns the row offset selected by the page.
func (p Page) Offset() int {
	return p.From * p.Size
}
