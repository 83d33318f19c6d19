package pack

import "errors"

// ErrTruncated is returned when a read runs past the end of the buffer.
var ErrTruncated = errors.New("pack: truncated")

// ErrMalformed is returned when decoded bits don't describe a valid value
// (an out-of-range square index, an invalid promotion/drop role, ...).
var ErrMalformed = errors.New("pack: malformed")
