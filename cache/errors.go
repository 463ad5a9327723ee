package cache

import "errors"

// ErrInvalidCapacity is returned by New when Options.Capacity is <= 0.
// Construction-time failure is fatal to the owning component (the caller
// decides whether that means a panic, a fatal log line, or a config error
// bubbled up to an operator).
var ErrInvalidCapacity = errors.New("cache: capacity must be > 0")
