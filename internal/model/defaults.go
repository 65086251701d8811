package model

import (
	"time"

	"github.com/tinytelemetry/recall/internal/srs"
)

// Shared defaults used by the server binary and its subsystems.
const (
	DefaultQueryTimeout = 30 * time.Second
	DefaultDueLimit     = srs.DefaultDueLimit
)
