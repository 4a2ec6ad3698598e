package repository

import (
	"context"

	"promo-campaign/internal/model"
)

// ParticipantRepository defines the interface for participant data operations
type ParticipantRepository interface {
	// Create inserts a completed registration. A duplicate phone is
	// rejected with ErrPhoneAlreadyRegistered before any row is written.
	Create(ctx context.Context, participant *model.Participant) error

	// FindByIdentity retrieves a participant by their stable identity;
	// ErrNotRegistered when absent
	FindByIdentity(ctx context.Context, identity int64) (*model.Participant, error)

	// PhoneExists reports whether any participant already holds this phone
	PhoneExists(ctx context.Context, phone string) (bool, error)

	// UpdateChances records a recomputed redeemed count and chance tier
	UpdateChances(ctx context.Context, identity int64, redeemedCount, chances int) error

	// ListIdentities returns every known participant identity (broadcast)
	ListIdentities(ctx context.Context) ([]int64, error)

	// Count returns the number of registered participants
	Count(ctx context.Context) (int64, error)
}
