package repository

import (
	"context"
	"sync"

	"promo-campaign/internal/model"
	apperrors "promo-campaign/pkg/errors"
)

// memoryParticipantRepository implements ParticipantRepository in memory.
type memoryParticipantRepository struct {
	mu           sync.Mutex
	participants map[int64]*model.Participant
	phones       map[string]int64
}

// NewMemoryParticipantRepository creates an in-memory participant repository
func NewMemoryParticipantRepository() ParticipantRepository {
	return &memoryParticipantRepository{
		participants: make(map[int64]*model.Participant),
		phones:       make(map[string]int64),
	}
}

func (r *memoryParticipantRepository) Create(ctx context.Context, participant *model.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.phones[participant.Phone]; taken {
		return apperrors.ErrPhoneAlreadyRegistered
	}

	copied := *participant
	r.participants[participant.Identity] = &copied
	r.phones[participant.Phone] = participant.Identity
	return nil
}

func (r *memoryParticipantRepository) FindByIdentity(ctx context.Context, identity int64) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	participant, ok := r.participants[identity]
	if !ok {
		return nil, apperrors.ErrNotRegistered
	}
	copied := *participant
	return &copied, nil
}

func (r *memoryParticipantRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, taken := r.phones[phone]
	return taken, nil
}

func (r *memoryParticipantRepository) UpdateChances(ctx context.Context, identity int64, redeemedCount, chances int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	participant, ok := r.participants[identity]
	if !ok {
		return apperrors.ErrNotRegistered
	}
	participant.RedeemedCount = redeemedCount
	participant.Chances = chances
	return nil
}

func (r *memoryParticipantRepository) ListIdentities(ctx context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identities := make([]int64, 0, len(r.participants))
	for identity := range r.participants {
		identities = append(identities, identity)
	}
	return identities, nil
}

func (r *memoryParticipantRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return int64(len(r.participants)), nil
}
