package repository

import "errors"

// ErrNotFound is returned when a queried record does not exist.
// Callers check it with errors.Is to decide between "unknown user"
// rejections and "filter matches nothing" empty results.
var ErrNotFound = errors.New("not found")
