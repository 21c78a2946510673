// Package session keeps the portfolio ledger of each trading session.
//
// A Store is the single point where orders of a session are serialized:
// Update runs one function at a time per session, on a private copy of the
// ledger that replaces the stored one only when the function succeeds.
package session

import (
	"context"
	"errors"

	"github.com/coachfolio/portfolio"
	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Store holds session ledgers by id.
type Store interface {
	// Create stores l under a new session id.
	Create(ctx context.Context, l *portfolio.Ledger) (string, error)
	// Load returns a copy of the ledger of session id.
	Load(ctx context.Context, id string) (*portfolio.Ledger, error)
	// Update calls fn with a copy of the ledger of session id and stores it
	// if fn returns nil. Updates of a session are serialized. It returns the
	// stored ledger, or the error of fn unchanged.
	Update(ctx context.Context, id string, fn func(*portfolio.Ledger) error) (*portfolio.Ledger, error)
	// Delete forgets session id.
	Delete(ctx context.Context, id string) error
}

func newID() string { return uuid.NewString() }
