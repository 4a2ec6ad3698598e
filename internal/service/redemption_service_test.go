package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"promo-campaign/internal/model"
	"promo-campaign/internal/repository"
	apperrors "promo-campaign/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedemption(t *testing.T) (*Redemption, repository.ParticipantRepository, repository.CodeRepository) {
	t.Helper()
	participants := repository.NewMemoryParticipantRepository()
	codes := repository.NewMemoryCodeRepository()
	return NewRedemption(participants, codes, zap.NewNop()), participants, codes
}

func registerParticipant(t *testing.T, participants repository.ParticipantRepository, identity int64) {
	t.Helper()
	err := participants.Create(context.Background(), &model.Participant{
		Identity:  identity,
		Phone:     fmt.Sprintf("+99890%07d", identity),
		Name:      "Test",
		Surname:   "Participant",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
}

func provisionCodes(t *testing.T, codes repository.CodeRepository, values ...string) {
	t.Helper()
	n, err := codes.Provision(context.Background(), values, time.Now())
	require.NoError(t, err)
	require.Equal(t, len(values), n)
}

func TestRedeemSuccessRecomputesTier(t *testing.T) {
	ctx := context.Background()
	svc, participants, codes := newTestRedemption(t)
	registerParticipant(t, participants, 1)
	provisionCodes(t, codes, "AA-000001", "AA-000002", "AR-9K2M4P")

	// Two prior redemptions, then a third: the tier jumps from 1 to 10.
	_, err := svc.Redeem(ctx, 1, "AA-000001")
	require.NoError(t, err)
	_, err = svc.Redeem(ctx, 1, "AA-000002")
	require.NoError(t, err)

	result, err := svc.Redeem(ctx, 1, "AR-9K2M4P")
	require.NoError(t, err)
	assert.Equal(t, "AR-9K2M4P", result.Code)
	assert.Equal(t, 3, result.TotalCodes)
	assert.Equal(t, 10, result.Chances)

	p, err := participants.FindByIdentity(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, p.RedeemedCount)
	assert.Equal(t, 10, p.Chances)
}

func TestRedeemCanonicalizesLowercase(t *testing.T) {
	ctx := context.Background()
	svc, participants, codes := newTestRedemption(t)
	registerParticipant(t, participants, 1)
	provisionCodes(t, codes, "AR-9K2M4P")

	result, err := svc.Redeem(ctx, 1, "ar-9k2m4p")
	require.NoError(t, err)
	assert.Equal(t, "AR-9K2M4P", result.Code)
}

func TestRedeemMalformedCode(t *testing.T) {
	ctx := context.Background()
	svc, participants, _ := newTestRedemption(t)
	registerParticipant(t, participants, 1)

	// Five trailing characters instead of six.
	_, err := svc.Redeem(ctx, 1, "AR-9K2M4")
	assert.ErrorIs(t, err, apperrors.ErrMalformedCode)
}

func TestRedeemNotRegistered(t *testing.T) {
	ctx := context.Background()
	svc, _, codes := newTestRedemption(t)
	provisionCodes(t, codes, "AR-9K2M4P")

	_, err := svc.Redeem(ctx, 99, "AR-9K2M4P")
	assert.ErrorIs(t, err, apperrors.ErrNotRegistered)
}

func TestRedeemCodeNotFound(t *testing.T) {
	ctx := context.Background()
	svc, participants, _ := newTestRedemption(t)
	registerParticipant(t, participants, 1)

	_, err := svc.Redeem(ctx, 1, "ZZ-ABSENT")
	assert.ErrorIs(t, err, apperrors.ErrCodeNotFound)
}

func TestRedeemAlreadyAssigned(t *testing.T) {
	ctx := context.Background()
	svc, participants, codes := newTestRedemption(t)
	registerParticipant(t, participants, 1)
	registerParticipant(t, participants, 2)
	provisionCodes(t, codes, "BX-1A2B3C")

	_, err := svc.Redeem(ctx, 1, "BX-1A2B3C")
	require.NoError(t, err)

	// Rejected for another identity and for the original owner alike.
	_, err = svc.Redeem(ctx, 2, "BX-1A2B3C")
	assert.ErrorIs(t, err, apperrors.ErrCodeAlreadyAssigned)
	_, err = svc.Redeem(ctx, 1, "BX-1A2B3C")
	assert.ErrorIs(t, err, apperrors.ErrCodeAlreadyAssigned)
}

func TestRedeemQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	svc, participants, codes := newTestRedemption(t)
	registerParticipant(t, participants, 1)

	values := make([]string, 0, MaxCodesPerParticipant+1)
	for i := 0; i <= MaxCodesPerParticipant; i++ {
		values = append(values, fmt.Sprintf("QT-%06d", i))
	}
	provisionCodes(t, codes, values...)

	for i := 0; i < MaxCodesPerParticipant; i++ {
		result, err := svc.Redeem(ctx, 1, values[i])
		require.NoError(t, err)
		if i == MaxCodesPerParticipant-1 {
			assert.Equal(t, 100, result.Chances)
		}
	}

	// The 11th attempt is rejected even though the code itself is valid
	// and unassigned.
	_, err := svc.Redeem(ctx, 1, values[MaxCodesPerParticipant])
	assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)

	row, err := codes.FindByCode(ctx, values[MaxCodesPerParticipant])
	require.NoError(t, err)
	assert.False(t, row.Assigned)
}

func TestRedeemConcurrentExclusivity(t *testing.T) {
	ctx := context.Background()
	svc, participants, codes := newTestRedemption(t)
	provisionCodes(t, codes, "BX-1A2B3C")

	const redeemers = 16
	for i := int64(1); i <= redeemers; i++ {
		registerParticipant(t, participants, i)
	}

	var wg sync.WaitGroup
	errs := make([]error, redeemers)
	for i := 0; i < redeemers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Redeem(ctx, int64(i+1), "BX-1A2B3C")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrCodeAlreadyAssigned)
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent redeemer may win")

	row, err := codes.FindByCode(ctx, "BX-1A2B3C")
	require.NoError(t, err)
	assert.True(t, row.Assigned)
	require.NotNil(t, row.Owner)
}

// failingChanceUpdates wraps a participant repository and fails every
// UpdateChances call.
type failingChanceUpdates struct {
	repository.ParticipantRepository
}

func (f *failingChanceUpdates) UpdateChances(ctx context.Context, identity int64, redeemedCount, chances int) error {
	return fmt.Errorf("connection reset")
}

func TestRedeemTierUpdateFailureKeepsClaim(t *testing.T) {
	ctx := context.Background()
	participants := repository.NewMemoryParticipantRepository()
	codes := repository.NewMemoryCodeRepository()
	svc := NewRedemption(&failingChanceUpdates{participants}, codes, zap.NewNop())

	registerParticipant(t, participants, 1)
	provisionCodes(t, codes, "AR-9K2M4P")

	_, err := svc.Redeem(ctx, 1, "AR-9K2M4P")
	assert.ErrorIs(t, err, apperrors.ErrPersistence)

	// The claim stands: the code must never be released to compensate.
	row, err := codes.FindByCode(ctx, "AR-9K2M4P")
	require.NoError(t, err)
	assert.True(t, row.Assigned)

	_, err = svc.Redeem(ctx, 1, "AR-9K2M4P")
	assert.ErrorIs(t, err, apperrors.ErrCodeAlreadyAssigned)
}

func TestListCodes(t *testing.T) {
	ctx := context.Background()
	svc, participants, codes := newTestRedemption(t)
	registerParticipant(t, participants, 1)
	provisionCodes(t, codes, "AA-000001", "AA-000002")

	_, err := svc.Redeem(ctx, 1, "AA-000001")
	require.NoError(t, err)
	_, err = svc.Redeem(ctx, 1, "AA-000002")
	require.NoError(t, err)

	owned, chances, err := svc.ListCodes(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, owned, 2)
	assert.Equal(t, 1, chances)

	_, _, err = svc.ListCodes(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrNotRegistered)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc, participants, codes := newTestRedemption(t)
	registerParticipant(t, participants, 1)
	registerParticipant(t, participants, 2)
	provisionCodes(t, codes, "AA-000001", "AA-000002", "AA-000003")

	_, err := svc.Redeem(ctx, 1, "AA-000001")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Participants)
	assert.Equal(t, int64(3), stats.CodesTotal)
	assert.Equal(t, int64(1), stats.CodesAssigned)
}
