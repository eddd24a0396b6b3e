package docstore

import "errors"

var (
	// ErrNotFound indicates a query matched no documents.
	ErrNotFound = errors.New("document not found")

	// ErrBadCollection indicates a collection name that cannot be used.
	ErrBadCollection = errors.New("invalid collection name")
)
