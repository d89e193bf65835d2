// Package storage declares shared persistence sentinels for invitation stores.
package storage

import "errors"

// ErrNotFound indicates a requested invitation record is missing.
var ErrNotFound = errors.New("invitation not found")
