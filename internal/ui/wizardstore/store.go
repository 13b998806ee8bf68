// Package wizardstore keeps the signup wizard state of each visitor, keyed by the wizard session id.
//
// Writes go through Update, which applies a reducer to the stored state atomically:
// concurrent actions on the same session never lose each other's changes.
package wizardstore

import (
	"context"
	"errors"

	"github.com/constella-app/constella-web/internal/wizard"
)

// ErrUnavailable is returned when the backing store cannot be reached
var ErrUnavailable = errors.New("wizard store unavailable")

// UpdateFunc derives the new state from the current one. It must not block.
type UpdateFunc func(wizard.State) wizard.State

type Store interface {
	// Get returns the state for id. found is false for unknown or expired sessions.
	Get(ctx context.Context, id string) (state wizard.State, found bool, err error)

	// Update applies fn to the current state (wizard.Initial() for a new session), saves the result,
	// refreshes the session TTL and returns the saved state
	Update(ctx context.Context, id string, fn UpdateFunc) (wizard.State, error)

	Delete(ctx context.Context, id string) error

	Close() error
}
