// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Account represents a registered user account.
//
// PasswordHash and Salt are hex strings with fixed widths (128 and 32 chars —
// a 64-byte scrypt key and a 16-byte salt). The plaintext password is never
// stored; it exists only transiently while a credential is derived.
//
// The struct carries the sensitive columns because the repository needs them,
// but they must never reach a client. Response shaping is explicit: handlers
// send PublicView(), never the Account itself.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicAccount is the client-facing projection of an Account.
// It exists so that "which fields leave the server" is a type, not a
// convention — adding a field here is a deliberate, reviewable act.
type PublicAccount struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// PublicView returns the account with credential material stripped.
func (a *Account) PublicView() PublicAccount {
	return PublicAccount{
		ID:       a.ID,
		Name:     a.Name,
		Email:    a.Email,
		Username: a.Username,
	}
}

// LoginAccount is the login-scoped projection: just enough to verify a
// password and issue a token. Repositories return this from credential
// lookups so the rest of the account never loads on the login path.
type LoginAccount struct {
	ID           string
	Name         string
	PasswordHash string
	Salt         string
}
