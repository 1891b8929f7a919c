// Package session is the network layer: site-ID allocation, the authentication handshake, the
// server hub, and the client's connection to it (section 4.F, section 5). It realizes the
// "net/" transport layer named in SPEC_FULL.md section 3 under the name session, since the
// standard library already owns the name net.
package session

import "errors"

var (
	// ErrSiteIDExhausted is returned by the server's site allocator once every 16-bit site id up
	// to the ceiling is in use. Section 3: "exceeding it is an unrecoverable error." Section 7
	// calls this fatal on the server; a new connection is refused rather than admitted.
	ErrSiteIDExhausted = errors.New("session: site-id space exhausted")

	// ErrUnknownBuffer is returned when a message names a buffer the local replica does not have
	// a table entry for. From a client this is a protocol violation (section 7); from the local
	// host it is a programming error.
	ErrUnknownBuffer = errors.New("session: unknown buffer")

	// ErrNotAuthenticated is returned if a caller attempts to use a Client before its handshake
	// has completed.
	ErrNotAuthenticated = errors.New("session: not authenticated")
)
