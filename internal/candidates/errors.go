package candidates

import "errors"

// ErrNotFound indicates the candidate does not exist.
var ErrNotFound = errors.New("candidate not found")

// ErrDuplicateKey indicates a concurrent insert won the identity key.
var ErrDuplicateKey = errors.New("candidate identity key already exists")
