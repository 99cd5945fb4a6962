package models

import "errors"

// ErrNotFound is returned by repositories when a document or row does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition is returned when an operation is not allowed from the
// entity's current status.
var ErrInvalidTransition = errors.New("invalid status transition")
