package graph

import "errors"

var (
	// ErrNotReady means no snapshot has been loaded yet.
	ErrNotReady = errors.New("universe not loaded")
	// ErrNotFound means a lookup ID does not exist in the loaded snapshot.
	ErrNotFound = errors.New("not found")
	// ErrUnreachable means no connection path exists between two systems.
	ErrUnreachable = errors.New("unreachable")
)
