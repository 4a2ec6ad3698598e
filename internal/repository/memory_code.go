package repository

import (
	"context"
	"sync"
	"time"

	"promo-campaign/internal/model"
	apperrors "promo-campaign/pkg/errors"
)

// memoryCodeRepository implements CodeRepository in memory. Used for local
// development (STORAGE_BACKEND=memory) and in tests; the claim path keeps
// the same test-and-set semantics as the MongoDB implementation.
type memoryCodeRepository struct {
	mu    sync.Mutex
	codes map[string]*model.Code
}

// NewMemoryCodeRepository creates an in-memory code repository
func NewMemoryCodeRepository() CodeRepository {
	return &memoryCodeRepository{
		codes: make(map[string]*model.Code),
	}
}

func (r *memoryCodeRepository) FindByCode(ctx context.Context, code string) (*model.Code, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.codes[code]
	if !ok {
		return nil, apperrors.ErrCodeNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *memoryCodeRepository) Claim(ctx context.Context, code string, identity int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.codes[code]
	if !ok || row.Assigned {
		return apperrors.ErrCodeAlreadyAssigned
	}

	assignedAt := at
	row.Assigned = true
	row.Owner = &identity
	row.AssignedAt = &assignedAt
	return nil
}

func (r *memoryCodeRepository) CountAssignedTo(ctx context.Context, identity int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, row := range r.codes {
		if row.Assigned && row.Owner != nil && *row.Owner == identity {
			count++
		}
	}
	return count, nil
}

func (r *memoryCodeRepository) ListAssignedTo(ctx context.Context, identity int64) ([]*model.Code, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var codes []*model.Code
	for _, row := range r.codes {
		if row.Assigned && row.Owner != nil && *row.Owner == identity {
			copied := *row
			codes = append(codes, &copied)
		}
	}
	return codes, nil
}

func (r *memoryCodeRepository) Provision(ctx context.Context, codes []string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, code := range codes {
		if _, exists := r.codes[code]; exists {
			continue
		}
		r.codes[code] = &model.Code{
			Code:      code,
			Assigned:  false,
			CreatedAt: at,
		}
		inserted++
	}
	return inserted, nil
}

func (r *memoryCodeRepository) Counts(ctx context.Context) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var assigned int64
	for _, row := range r.codes {
		if row.Assigned {
			assigned++
		}
	}
	return int64(len(r.codes)), assigned, nil
}
