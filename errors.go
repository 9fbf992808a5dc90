package space2d

import "errors"

// Errors returned by the server. Operations wrap them with the name of the
// failing call, so compare with errors.Is.
var (
	// ErrInvalidHandle is returned when a handle is stale, zero or belongs to another table.
	ErrInvalidHandle = errors.New("invalid handle")
	// ErrFlushingQueries is returned for structural mutations attempted while
	// the server delivers monitor and state callbacks.
	ErrFlushingQueries = errors.New("can't change this state while flushing queries, defer the call")
	// ErrSpaceLocked is returned when direct state is requested while its space is stepping.
	ErrSpaceLocked = errors.New("space is locked")
	// ErrIndexOutOfRange is returned for shape indices outside an object's shape list.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidState is returned for calls made in the wrong server or object state.
	ErrInvalidState = errors.New("invalid state")
	// ErrKindMismatch is returned when data does not match the shape or joint kind.
	ErrKindMismatch = errors.New("kind mismatch")
	// ErrInvalidValue is returned for arguments outside their allowed range.
	ErrInvalidValue = errors.New("invalid value")
)
