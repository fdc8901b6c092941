package repository

import "errors"

var (
	// ErrNotFound means the queried record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrAlreadyExists means an insert hit a primary-key conflict.
	ErrAlreadyExists = errors.New("repository: already exists")
)
