package domain

// Book represents a title in the catalog with a finite pool of copies.
//
// AvailableCopies counts the copies not currently on loan and always
// satisfies 0 <= AvailableCopies <= TotalCopies. The loan lifecycle is
// the only writer of AvailableCopies once loans reference the book.
type Book struct {
	Record
	Title           string `json:"title"`
	PublicationYear int    `json:"publicationYear,omitempty"`
	AvailableCopies int    `json:"availableCopies"`
	TotalCopies     int    `json:"totalCopies"`
	AuthorID        string `json:"authorId,omitempty"`
}

// Available reports whether at least one copy can be borrowed.
func (b *Book) Available() bool {
	return b.AvailableCopies > 0
}
