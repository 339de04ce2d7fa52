package store

import "errors"

// ErrNotFound is returned when a record does not exist or is owned by a
// different account; the two cases are indistinguishable on purpose.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an account with the same email
// already exists.
var ErrDuplicateEmail = errors.New("email already registered")
