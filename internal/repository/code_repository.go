package repository

import (
	"context"
	"time"

	"promo-campaign/internal/model"
)

// CodeRepository defines the interface for code data operations. Code rows
// are pre-provisioned before the campaign runs; the redemption flow only
// ever claims them.
type CodeRepository interface {
	// FindByCode retrieves a code row by its canonical code string
	FindByCode(ctx context.Context, code string) (*model.Code, error)

	// Claim atomically assigns an unassigned code to an identity. The
	// update is guarded on the code still being unassigned at write time;
	// losing that race returns ErrCodeAlreadyAssigned.
	Claim(ctx context.Context, code string, identity int64, at time.Time) error

	// CountAssignedTo counts codes currently assigned to an identity
	CountAssignedTo(ctx context.Context, identity int64) (int, error)

	// ListAssignedTo retrieves the codes assigned to an identity
	ListAssignedTo(ctx context.Context, identity int64) ([]*model.Code, error)

	// Provision inserts new unassigned code rows, skipping duplicates.
	// Returns the number of rows actually inserted.
	Provision(ctx context.Context, codes []string, at time.Time) (int, error)

	// Counts returns total and assigned code counts
	Counts(ctx context.Context) (total int64, assigned int64, err error)
}
