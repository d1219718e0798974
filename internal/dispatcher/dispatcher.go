// Package dispatcher defines the pluggable per-channel delivery strategies.
package dispatcher

import (
	"context"
	"errors"

	"gorm.io/datatypes"
)

var (
	ErrUnknownDispatcher = errors.New("unknown dispatcher")
	ErrMissingAddress    = errors.New("payload address is required")
)

// Payload is a rendered message bound for one address.
type Payload struct {
	Address string
	Subject string
	Text    string
	HTML    string
	// Config is the owning channel's configuration blob (SMTP overrides,
	// webhook URL, headers).
	Config datatypes.JSONMap
}

// Dispatcher delivers a rendered payload to one address. Implementations do
// not deduplicate; retry safety comes from the processor's delivered
// checkpoint, not from the dispatcher.
type Dispatcher interface {
	Name() string
	Send(ctx context.Context, payload Payload) error
}
