package ytcookies

import (
	"errors"
	"strings"
)

// FailureKind classifies why a browser/profile yielded no cookies.
type FailureKind string

const (
	// FailureNotFound means the browser or profile is absent on this machine.
	FailureNotFound FailureKind = "not found"
	// FailureLocked means the cookie store could not be copied or opened.
	FailureLocked FailureKind = "locked"
	// FailureKeyUnavailable means the OS secret for the browser could not be
	// retrieved, so no record from it can ever decrypt.
	FailureKeyUnavailable FailureKind = "key unavailable"
	// FailureNoCookies means the store opened but no rows matched the domain.
	FailureNoCookies FailureKind = "no matching cookies"
	// FailureDecrypt means rows matched but every value failed to decrypt.
	FailureDecrypt FailureKind = "decryption failed"
)

// ErrNoCookies is the terminal error when every candidate source was exhausted.
// Returned wrapped in an *ExhaustedError carrying per-source reasons.
var ErrNoCookies = errors.New("ytcookies: no usable cookies found in any browser")

// ExhaustedError reports that every candidate browser/profile failed, with the
// reason for each so the caller can surface an actionable message.
type ExhaustedError struct {
	Sources []SourceReport
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	b.WriteString(ErrNoCookies.Error())
	for _, s := range e.Sources {
		b.WriteString("\n  ")
		b.WriteString(s.String())
	}
	return b.String()
}

func (e *ExhaustedError) Unwrap() error { return ErrNoCookies }
