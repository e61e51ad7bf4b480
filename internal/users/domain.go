// Package users persists registered accounts. Email is the unique identity and
// accounts are never updated once created.
package users

import (
	"errors"
	"time"
)

// ErrDuplicateEmail indicates an account with the same email already exists.
var ErrDuplicateEmail = errors.New("users: email already registered")

// Account is a registered user.
type Account struct {
	ID            int64
	FullName      string
	Email         string
	PasswordHash  string
	Location      string
	ZipCode       string
	PreferredCity string
	CreatedAt     time.Time
}

// NewAccount carries the fields required to create an account. PasswordHash must
// already be hashed.
type NewAccount struct {
	FullName      string
	Email         string
	PasswordHash  string
	Location      string
	ZipCode       string
	PreferredCity string
}
