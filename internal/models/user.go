package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// AuthResult is what the persistence service returns after login or registration.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
