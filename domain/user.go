package domain

import "time"

// User represents a registered account. The password hash never leaves
// the server; it is excluded from every serialized form. Accounts are
// created at registration and never updated or deleted in-app.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
