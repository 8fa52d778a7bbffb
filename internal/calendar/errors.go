package calendar

import "errors"

var (
	// ErrAuthExpired is surfaced when the remote API rejects the token and
	// the single refresh attempt could not recover.
	ErrAuthExpired = errors.New("calendar authorization expired")

	// ErrCredentialPersistence means credentials could not be written to
	// durable storage. The session keeps them in memory; the connection
	// will not be recalled on next start.
	ErrCredentialPersistence = errors.New("failed to persist calendar credentials")

	// ErrNotConnected is returned for operations before SetCredentials.
	ErrNotConnected = errors.New("calendar not connected")
)
