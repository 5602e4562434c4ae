package models

// Actor is the acting principal as supplied by the upstream identity
// provider. This core never authenticates; it only checks role membership.
type Actor struct {
	ID   string
	Role string
}

// IsAdmin reports whether the actor may use administrative listings.
func (a Actor) IsAdmin() bool {
	return a.Role == "admin"
}
