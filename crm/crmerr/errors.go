// Package crmerr defines the recoverable error taxonomy of the bot.
// Every type carries a short machine code surfaced in handler summaries.
package crmerr

import "fmt"

// ValidationError reports malformed user input. The user is re-prompted and
// no state is written.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// Code returns the machine readable error code.
func (e *ValidationError) Code() string { return "VALIDATION" }

// AuthorizationError reports a refused request from an unauthenticated or
// banned user.
type AuthorizationError struct {
	Banned bool
}

func (e *AuthorizationError) Error() string {
	if e.Banned {
		return "authorization: user is banned"
	}
	return "authorization: user is not logged in"
}

// Code returns the machine readable error code.
func (e *AuthorizationError) Code() string {
	if e.Banned {
		return "BANNED"
	}
	return "UNAUTHORIZED"
}

// NotFoundError reports an operation targeting a missing record.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// Code returns the machine readable error code.
func (e *NotFoundError) Code() string { return "NOT_FOUND" }

// StoreError wraps an underlying persistence failure confined to one operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// Code returns the machine readable error code.
func (e *StoreError) Code() string { return "STORE" }

// RateLimitedError reports an event dropped by admission control.
type RateLimitedError struct{}

func (e *RateLimitedError) Error() string { return "rate limited" }

// Code returns the machine readable error code.
func (e *RateLimitedError) Code() string { return "RATE_LIMITED" }
