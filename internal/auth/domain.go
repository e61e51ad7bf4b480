// Package auth verifies credentials and manages the logged in state of a browser session.
package auth

import "time"

// User represents an account as seen by the login flow.
type User struct {
	ID           int64
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// LoginSession is the audit row written for every successful login.
type LoginSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
	IP        string
	UserAgent string
}
