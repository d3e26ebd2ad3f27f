package session

import "errors"

// ErrNotFound is returned by the registry when no session exists for the
// given identifier. It is an expected outcome, not a fault.
var ErrNotFound = errors.New("session not found")

// ErrAlreadyStreaming is returned when a second connection tries to claim a
// session that already has a live ingestion loop.
var ErrAlreadyStreaming = errors.New("session already streaming")

// ErrAnalysis wraps failures of the session-analysis capability during
// finalize, including malformed structured results.
var ErrAnalysis = errors.New("session analysis failed")
