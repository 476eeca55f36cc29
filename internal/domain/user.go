package domain

// User represents a registered library member.
//
// Email is unique and looked up by exact match as stored.
// PasswordHash is an Argon2id encoded hash and never leaves the server.
type User struct {
	Record
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	RegisteredOn Date   `json:"registeredOn"`
}

// DisplayName returns the user's given and family name, space-separated.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
