package ledger

import "errors"

// Sentinel kinds for ledger errors.
var (
	// ErrValidation marks a write rejected because a required field is
	// missing or malformed.
	ErrValidation = errors.New("validation failed")
)
