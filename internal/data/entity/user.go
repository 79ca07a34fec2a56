package entity

type User struct {
	Base
	Username      string  `db:"username"`
	Email         string  `db:"email"`
	PasswordHash  *string `db:"password"`
	EmailVerified bool    `db:"email_verified"`
	IsActive      bool    `db:"is_active"`
}

// HasPassword reports whether the account can authenticate with a password.
// OAuth-only accounts store NULL instead of a hash.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
