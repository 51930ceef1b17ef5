package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when the addressed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidFamily is returned when a guest is moved into a family that does not exist.
	ErrInvalidFamily = errors.New("target family not found")
)
