package domain

type ContextKey string

const UserContextKey ContextKey = "user"

const RoleAdmin = "admin"

// User is the identity carried by a validated access token. Accounts and
// sessions are managed outside this service.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
