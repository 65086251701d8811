package srs

import "errors"

// Sentinel errors for the srs package.
// Use errors.Is to check: errors.Is(err, srs.ErrInvalidQuality)
var (
	ErrInvalidQuality     = errors.New("srs: invalid quality")
	ErrInvariantViolation = errors.New("srs: invariant violation")
)
