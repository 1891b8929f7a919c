package proto

import "errors"

var (
	// ErrBadFrame is returned for an unparsable frame, wrong arity, or invalid base64 id —
	// section 7 "Protocol violation".
	ErrBadFrame = errors.New("proto: malformed frame")

	// ErrUnknownType is returned when a frame's leading symbol names no message type this
	// package knows.
	ErrUnknownType = errors.New("proto: unknown message type")

	// ErrAuthFailed reports a hello response that does not match the expected HMAC. Verify itself
	// returns a bool; the hub logs this error when it drops such a connection.
	ErrAuthFailed = errors.New("proto: authentication failed")
)
