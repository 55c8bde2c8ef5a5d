// Package failure holds the error taxonomy and the single sink every
// suppressed error is funneled through.
package failure

import (
	"context"
	"errors"
)

var (
	// ErrDevice marks an audio device that could not be opened or died.
	ErrDevice = errors.New("device error")

	// ErrTransientUpstream marks a timeout or failure from transcription,
	// summarization, fetch or append collaborators. Retried at the
	// collaborator boundary.
	ErrTransientUpstream = errors.New("transient upstream error")

	// ErrData marks empty or malformed content. Logged and skipped, never retried.
	ErrData = errors.New("data error")

	// ErrInvariant marks a broken invariant that processing tolerates,
	// e.g. two entities colliding on one alias key.
	ErrInvariant = errors.New("invariant violation")
)

// Kind is the coarse classification of an error.
type Kind string

const (
	KindDevice    Kind = "device"
	KindTransient Kind = "transient"
	KindData      Kind = "data"
	KindInvariant Kind = "invariant"
)

// Classify maps an error to its Kind. Unknown errors, timeouts and
// cancellations count as transient upstream failures.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, ErrDevice):
		return KindDevice
	case errors.Is(err, ErrData):
		return KindData
	case errors.Is(err, ErrInvariant):
		return KindInvariant
	default:
		return KindTransient
	}
}

// IsPermanent reports whether retrying err is pointless.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrData) || errors.Is(err, ErrInvariant) || errors.Is(err, context.Canceled)
}
