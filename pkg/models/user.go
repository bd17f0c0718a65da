package models

import "time"

// User is the backend-agnostic account shape. ID is the public identifier:
// an ObjectID hex string when the document backend served it, a decimal
// sequence number when the in-memory backend did.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUser carries validated registration input into a store. IsAdmin is
// expected to already be normalized by the caller.
type NewUser struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}
