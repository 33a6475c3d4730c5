package session

import "errors"

// ErrAuthentication covers a wrong access code and any token that is
// missing, malformed, mis-signed or expired.
var ErrAuthentication = errors.New("authentication failed")
