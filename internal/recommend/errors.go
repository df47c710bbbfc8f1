// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import "errors"

// ErrorKind classifies failures in the recommendation pipeline.
type ErrorKind int

const (
	// KindInternal is an unexpected failure surfaced as a generic error.
	KindInternal ErrorKind = iota
	// KindUnknownUser triggers the cold-start path. Never surfaced.
	KindUnknownUser
	// KindMissingArtifact is fatal at startup.
	KindMissingArtifact
	// KindRatingsStoreUnavailable degrades the content signal to zeros.
	KindRatingsStoreUnavailable
	// KindUnknownCandidateItem scores 0 on the affected signal.
	KindUnknownCandidateItem
	// KindCorruptArtifact means inconsistent indices were found at serve time.
	KindCorruptArtifact
)

// String returns the kind name used in logs.
func (k ErrorKind) String() string {
	switch k {
	case KindUnknownUser:
		return "unknown_user"
	case KindMissingArtifact:
		return "missing_artifact"
	case KindRatingsStoreUnavailable:
		return "ratings_store_unavailable"
	case KindUnknownCandidateItem:
		return "unknown_candidate_item"
	case KindCorruptArtifact:
		return "corrupt_artifact"
	default:
		return "internal"
	}
}

// Sentinels matched with errors.Is against any *Error of the same kind.
var (
	ErrUnknownUser             = errors.New("unknown user")
	ErrMissingArtifact         = errors.New("missing artifact")
	ErrRatingsStoreUnavailable = errors.New("ratings store unavailable")
	ErrUnknownCandidateItem    = errors.New("unknown candidate item")
	ErrCorruptArtifact         = errors.New("corrupt artifact")
)

// Error is a classified pipeline error.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError wraps err with a kind and the failing operation.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnknownUser:
		return ErrUnknownUser
	case KindMissingArtifact:
		return ErrMissingArtifact
	case KindRatingsStoreUnavailable:
		return ErrRatingsStoreUnavailable
	case KindUnknownCandidateItem:
		return ErrUnknownCandidateItem
	case KindCorruptArtifact:
		return ErrCorruptArtifact
	default:
		return nil
	}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
