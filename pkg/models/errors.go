package models

import (
	"errors"
	"fmt"
)

// Error kinds reported to the workflow coordinator. The coordinator
// branches on these, so they are part of the external contract.
const (
	KindInvalidInput     = "InvalidInput"
	KindDriveDownload    = "DriveDownload"
	KindSpreadsheetParse = "SpreadsheetParse"
	KindScoring          = "Scoring"
	KindScoreParse       = "ScoreParse"
	KindWorkFailed       = "WorkFailed"
	KindTaskTerminated   = "TaskTerminated"
)

// WorkError attaches a coordinator-visible kind to a business failure.
// The wrapped error keeps the full diagnostic chain for the logs; the
// callback transport truncates it separately.
type WorkError struct {
	Kind string
	Err  error
}

func (e *WorkError) Error() string {
	if e.Err == nil {
		return e.Kind
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *WorkError) Unwrap() error {
	return e.Err
}

// NewWorkError wraps err with the given kind
func NewWorkError(kind string, err error) *WorkError {
	return &WorkError{Kind: kind, Err: err}
}

// Errorf builds a WorkError from a format string
func Errorf(kind, format string, args ...interface{}) *WorkError {
	return &WorkError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the error kind from err, falling back to
// KindWorkFailed for errors that never got classified
func KindOf(err error) string {
	var we *WorkError
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindWorkFailed
}
