// Package apperr tags errors with one of a small fixed set of kinds so the
// HTTP layer can map them to status codes without string-matching messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is one of the error kinds the HTTP layer understands.
type Kind int

const (
	// KindUnknown is the zero value: an error with no assigned kind maps to
	// a 500 by default.
	KindUnknown Kind = iota
	// KindValidation is a malformed request: bad FEN, unknown variant, a
	// filter value out of range. Maps to 400.
	KindValidation
	// KindNotFound is a missing game/PGN id. Maps to 404.
	KindNotFound
	// KindDecode is a corrupted on-disk value (truncated or malformed).
	// Fatal for the one record; maps to 500.
	KindDecode
	// KindImportReject is a business-rule rejection during import (rating
	// below threshold, duplicate id, invalid initial position, unparsable
	// PGN). Logged at warning level; the batch continues.
	KindImportReject
	// KindStoreIO is a disk error. Propagated to the caller; an importer
	// batch aborts on the first one.
	KindStoreIO
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindDecode:
		return "decode"
	case KindImportReject:
		return "import_reject"
	case KindStoreIO:
		return "store_io"
	default:
		return "unknown"
	}
}

// appError is a plain error carrying a Kind and an optional wrapped cause.
type appError struct {
	kind Kind
	msg  string
	err  error
}

func (e *appError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *appError) Unwrap() error {
	return e.err
}

// New returns an error of the given kind with a plain message.
func New(kind Kind, msg string) error {
	return &appError{kind: kind, msg: msg}
}

// Wrap attaches a kind to an existing error, preserving it as the cause.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &appError{kind: kind, msg: msg, err: err}
}

// KindOf returns the Kind attached to err via New/Wrap anywhere in its
// chain, or KindUnknown if none is found.
func KindOf(err error) Kind {
	var ae *appError
	if errors.As(err, &ae) {
		return ae.kind
	}
	return KindUnknown
}

// Is reports whether err (or any error it wraps) carries kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
