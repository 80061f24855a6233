package assignment

import "errors"

// ErrNotFound indicates the assignment doesn't exist.
var ErrNotFound = errors.New("assignment not found")
