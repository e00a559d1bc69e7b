package domain

import "github.com/google/uuid"

// User is the owning identity for accounts and categories. Authentication is
// handled by the external identity provider; this service only resolves the
// token subject to the internal user row.
type User struct {
	ID          uuid.UUID `json:"id"`
	AuthSubject string    `json:"auth_subject"`
	FullName    string    `json:"full_name"`
}
