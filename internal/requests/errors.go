package requests

import "errors"

// ErrNotFound indicates the request does not exist.
var ErrNotFound = errors.New("request not found")

// ErrInvalidTransition indicates a status change that violates the
// monotonic lifecycle, e.g. processing an already-claimed request.
var ErrInvalidTransition = errors.New("invalid status transition")

// Failure codes recorded on failed requests.
const (
	ErrorCodeStorage  = "storage"
	ErrorCodeInternal = "internal"
)
