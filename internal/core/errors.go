package core

import "errors"

// Sentinel errors shared across the engine, store, and HTTP layers. The
// handlers map these to distinct response codes, so NotFound and Corrupted
// must stay separate values.
var (
	// ErrInvalidURL rejects malformed or non-http(s) analyze targets
	// before any external call is made.
	ErrInvalidURL = errors.New("invalid url")

	// ErrMissingSessionID rejects converse requests with an empty session id.
	ErrMissingSessionID = errors.New("missing session_id")

	// ErrSessionNotFound means the session never existed or its TTL expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionCorrupted means the session payload exists but no longer
	// decodes into the expected shape.
	ErrSessionCorrupted = errors.New("session payload corrupted")
)
