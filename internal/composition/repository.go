package composition

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a composition cannot be found by ID.
var ErrNotFound = errors.New("composition not found")

// Repository defines the interface for composition records.
// It acts as a port in the hexagonal architecture pattern.
type Repository interface {
	// Save stores a composition. An existing record with the same ID is replaced.
	Save(ctx context.Context, c *Composition) error

	// FindByID retrieves a composition by its unique identifier.
	// Returns ErrNotFound if the composition does not exist.
	FindByID(ctx context.Context, id string) (*Composition, error)

	// List returns all compositions, newest first.
	List(ctx context.Context) ([]*Composition, error)
}
