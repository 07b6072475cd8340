package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidMatch covers every rejection of a match request. The wrapped
// cause narrows it; no player state is mutated when it is returned.
var (
	ErrInvalidMatch    = errors.New("invalid match")
	ErrTieScore        = errors.New("tied score cannot be rated")
	ErrSamePlayer      = errors.New("a player cannot play themselves")
	ErrUnknownPlayer   = errors.New("unknown player")
	ErrMatchInProgress = errors.New("a match is already in progress")
)

var (
	ErrPlayerExists      = errors.New("player already exists")
	ErrInvalidCredential = errors.New("invalid credential")
)

// MalformedRecordError reports a persisted line that failed to parse. The
// line is skipped and loading continues.
type MalformedRecordError struct {
	File   string
	Line   int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: malformed record on line %d: %s", e.File, e.Line, e.Reason)
}
