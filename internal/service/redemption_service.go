package service

import (
	"context"
	"errors"
	"time"

	"promo-campaign/internal/model"
	"promo-campaign/internal/repository"
	apperrors "promo-campaign/pkg/errors"
	"promo-campaign/pkg/promo"

	"go.uber.org/zap"
)

// MaxCodesPerParticipant caps how many codes one participant may redeem.
const MaxCodesPerParticipant = 10

// Redemption orchestrates code validation, exclusive assignment and chance
// tier recomputation.
type Redemption struct {
	participants repository.ParticipantRepository
	codes        repository.CodeRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewRedemption creates a new redemption service
func NewRedemption(participants repository.ParticipantRepository, codes repository.CodeRepository, logger *zap.Logger) *Redemption {
	return &Redemption{
		participants: participants,
		codes:        codes,
		logger:       logger,
		now:          time.Now,
	}
}

// Redeem attempts an exclusive assignment of the submitted code to the
// given identity. The conditional claim in the code store is the only
// exclusivity mechanism: of any number of concurrent attempts on one code,
// exactly one succeeds.
func (s *Redemption) Redeem(ctx context.Context, identity int64, rawCode string) (*model.RedemptionResult, error) {
	if !promo.Validate(rawCode) {
		redemptionsTotal.WithLabelValues("malformed").Inc()
		return nil, apperrors.ErrMalformedCode
	}
	code := promo.Canonicalize(rawCode)

	if _, err := s.participants.FindByIdentity(ctx, identity); err != nil {
		if errors.Is(err, apperrors.ErrNotRegistered) {
			redemptionsTotal.WithLabelValues("not_registered").Inc()
			return nil, err
		}
		return nil, s.persistence(err, "participant lookup failed", identity, code)
	}

	row, err := s.codes.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrCodeNotFound) {
			redemptionsTotal.WithLabelValues("not_found").Inc()
			return nil, err
		}
		return nil, s.persistence(err, "code lookup failed", identity, code)
	}
	// Already-assigned is rejected regardless of owner, the caller's own
	// prior redemption included.
	if row.Assigned {
		redemptionsTotal.WithLabelValues("already_assigned").Inc()
		return nil, apperrors.ErrCodeAlreadyAssigned
	}

	used, err := s.codes.CountAssignedTo(ctx, identity)
	if err != nil {
		return nil, s.persistence(err, "assigned-count query failed", identity, code)
	}
	if used >= MaxCodesPerParticipant {
		redemptionsTotal.WithLabelValues("quota_exceeded").Inc()
		return nil, apperrors.ErrQuotaExceeded
	}

	if err := s.codes.Claim(ctx, code, identity, s.now()); err != nil {
		if errors.Is(err, apperrors.ErrCodeAlreadyAssigned) {
			// A concurrent redeemer won the race between lookup and claim.
			redemptionsTotal.WithLabelValues("already_assigned").Inc()
			return nil, err
		}
		return nil, s.persistence(err, "claim update failed", identity, code)
	}

	totalCodes := used + 1
	chances := promo.Chances(totalCodes)

	// The claim is permanent even if recording the new tier fails: the
	// count query recomputes it on the next redemption, so a code is never
	// un-claimed to compensate.
	if err := s.participants.UpdateChances(ctx, identity, totalCodes, chances); err != nil {
		redemptionsTotal.WithLabelValues("persistence_error").Inc()
		s.logger.Error("chance update failed after successful claim",
			zap.Int64("identity", identity),
			zap.String("code", code),
			zap.Error(err))
		return nil, apperrors.ErrPersistence
	}

	redemptionsTotal.WithLabelValues("success").Inc()
	s.logger.Info("code redeemed",
		zap.Int64("identity", identity),
		zap.String("code", code),
		zap.Int("total_codes", totalCodes),
		zap.Int("chances", chances))

	return &model.RedemptionResult{
		Code:       code,
		TotalCodes: totalCodes,
		Chances:    chances,
	}, nil
}

// ListCodes retrieves the codes assigned to a participant along with their
// current totals.
func (s *Redemption) ListCodes(ctx context.Context, identity int64) ([]*model.Code, int, error) {
	if _, err := s.participants.FindByIdentity(ctx, identity); err != nil {
		return nil, 0, err
	}

	codes, err := s.codes.ListAssignedTo(ctx, identity)
	if err != nil {
		return nil, 0, s.persistence(err, "assigned-code listing failed", identity, "")
	}

	return codes, promo.Chances(len(codes)), nil
}

// Stats summarizes campaign progress.
func (s *Redemption) Stats(ctx context.Context) (*model.CampaignStats, error) {
	participants, err := s.participants.Count(ctx)
	if err != nil {
		return nil, s.persistence(err, "participant count failed", 0, "")
	}

	total, assigned, err := s.codes.Counts(ctx)
	if err != nil {
		return nil, s.persistence(err, "code counts failed", 0, "")
	}

	return &model.CampaignStats{
		Participants:  participants,
		CodesTotal:    total,
		CodesAssigned: assigned,
	}, nil
}

func (s *Redemption) persistence(err error, msg string, identity int64, code string) error {
	s.logger.Error(msg,
		zap.Int64("identity", identity),
		zap.String("code", code),
		zap.Error(err))
	return apperrors.ErrPersistence
}
