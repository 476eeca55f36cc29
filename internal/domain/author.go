package domain

// Author represents a book author in the catalog.
type Author struct {
	Record
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	BirthYear   int    `json:"birthYear,omitempty"`
	Nationality string `json:"nationality,omitempty"`
}

// DisplayName returns the author's given and family name, space-separated.
func (a *Author) DisplayName() string {
	return a.FirstName + " " + a.LastName
}
