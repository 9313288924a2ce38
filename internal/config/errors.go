package config

import (
	"errors"
)

// ErrInvalidConfig wraps validation failures; ErrLoadConfig wraps file, env and
// decode failures.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
