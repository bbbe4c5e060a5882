package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	ErrLoad    = errors.New("config load failed")
	ErrInvalid = errors.New("invalid config")
)
