package domain

import "errors"

var (
	// ErrCatalogNotFound indicates the video's question catalog could not be loaded.
	ErrCatalogNotFound = errors.New("catalog not found")
	// ErrSessionNotFound is returned when a player session has not been opened.
	ErrSessionNotFound = errors.New("player session not found")
	// ErrUnknownCommand indicates a command type the engine does not accept.
	ErrUnknownCommand = errors.New("unknown player command")
)
