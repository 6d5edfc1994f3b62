package services

import (
	"context"
	"fmt"

	"github.com/tallyhq/tally-api/models"
	"github.com/tallyhq/tally-api/storage"
)

// Directory resolves human-readable usernames to stable member records. The
// identity service owns member data; the ledger treats member existence as a
// precondition and only ever reads through this interface.
type Directory interface {
	// ByUsername resolves a username, returning NotFoundError when it
	// does not resolve.
	ByUsername(ctx context.Context, username string) (*models.User, error)

	// ByID looks up a member by id, returning NotFoundError when absent.
	ByID(ctx context.Context, id string) (*models.User, error)

	// ByIDs bulk-resolves ids to users; unknown ids are simply missing
	// from the result.
	ByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
}

type storeDirectory struct {
	store *storage.Store
}

// NewDirectory returns a Directory backed by the identity-owned users table.
func NewDirectory(store *storage.Store) Directory {
	return &storeDirectory{store: store}
}

func (d *storeDirectory) ByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := d.store.UserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolve username: %w", err)
	}
	if u == nil {
		return nil, models.NewNotFoundError("user %q not found", username)
	}
	return u, nil
}

func (d *storeDirectory) ByID(ctx context.Context, id string) (*models.User, error) {
	u, err := d.store.UserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve user id: %w", err)
	}
	if u == nil {
		return nil, models.NewNotFoundError("user not found")
	}
	return u, nil
}

func (d *storeDirectory) ByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	return d.store.UsersByIDs(ctx, ids)
}
