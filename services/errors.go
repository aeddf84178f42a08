package services

import "errors"

// ErrProvider marks failures that originate at an external provider, so
// handlers can answer 502 Bad Gateway instead of 500.
var ErrProvider = errors.New("provider unavailable")
