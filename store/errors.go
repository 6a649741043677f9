package store

import "errors"

var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyContent indicates a mutation was attempted with blank content.
	ErrEmptyContent = errors.New("empty content")

	// ErrLastRoom indicates an attempt to delete the only remaining room.
	ErrLastRoom = errors.New("cannot delete the last room")
)
