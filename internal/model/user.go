// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// The JSON names match what the browser client already reads ("_id",
// "created_at"). PasswordHash carries `json:"-"` so a User can be written
// straight into a response without ever leaking the hash.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"` // unique, compared case-sensitively
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns a copy of the user with the password hash cleared.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
