package store

import "errors"

// ErrInvalidInput marks caller mistakes: malformed fields, stream names,
// cursors, range bounds or filters. Transports map it to a client error.
var ErrInvalidInput = errors.New("invalid input")
