package models

// User is the authenticated cashier.
type User struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Session is returned by a successful login.
type Session struct {
	Token       string   `json:"-"`
	User        User     `json:"user"`
	Permissions []string `json:"permissions"`
}

// Keys used in the token store.
const (
	TokenKey    = "auth_token"
	UserNameKey = "user_name"
)
