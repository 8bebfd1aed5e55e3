package storage

import "errors"

var (
	// ErrNotFound is returned when a user or session does not exist.
	ErrNotFound = errors.New("storage: not found")

	// ErrDuplicateKey is returned when an insert or update would reuse an
	// email or username that another user holds.
	ErrDuplicateKey = errors.New("storage: duplicate key")

	// ErrStorageClosed is returned by every operation after Close.
	ErrStorageClosed = errors.New("storage: closed")

	// ErrSerializationFailed wraps codec errors for stored values.
	ErrSerializationFailed = errors.New("storage: serialization failed")
)
