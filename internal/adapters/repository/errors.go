package repository

import "errors"

// Sentinel kinds for snapshot storage errors.
var (
	// ErrPersistence marks a snapshot that could not be written or read.
	ErrPersistence = errors.New("persistence failed")
	// ErrNoSnapshot is returned by Load when nothing has been saved yet.
	ErrNoSnapshot = errors.New("no snapshot")
	// ErrCorruptSnapshot is returned by Load when stored data cannot be decoded.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)
