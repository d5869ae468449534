package domain

import "time"

// User roles. The first account ever registered becomes the admin.
const (
	RoleDefault = "user"
	RoleAdmin   = "admin"
)

// User represents an account record. Accounts are never physically deleted;
// Disabled is a soft flag and CurrentToken holds the one credential that is
// currently accepted for this user.
type User struct {
	ID            int64
	UserName      string
	PhoneNumber   string
	PasswordHash  string
	Salt          string
	Role          string
	CurrentToken  string
	Disabled      bool
	Remark        string
	LastLoginTime time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
