package service

import (
	"context"
	"time"

	"promo-campaign/internal/model"
	"promo-campaign/internal/repository"
	"promo-campaign/internal/transport"

	"go.uber.org/zap"
)

// Broadcast fans a message out to every registered participant. Best-effort
// with per-recipient isolation: one failed delivery is tallied and skipped,
// never retried and never aborting the loop.
type Broadcast struct {
	participants repository.ParticipantRepository
	sender       transport.Sender
	pace         time.Duration
	logger       *zap.Logger
}

// NewBroadcast creates a new broadcast service. pace is the fixed delay
// between sends, respecting outbound rate limits.
func NewBroadcast(participants repository.ParticipantRepository, sender transport.Sender, pace time.Duration, logger *zap.Logger) *Broadcast {
	return &Broadcast{
		participants: participants,
		sender:       sender,
		pace:         pace,
		logger:       logger,
	}
}

// Send delivers text to all known participant identities and reports the
// tally. No lock is held across the fan-out.
func (b *Broadcast) Send(ctx context.Context, text string) (*model.BroadcastSummary, error) {
	identities, err := b.participants.ListIdentities(ctx)
	if err != nil {
		return nil, err
	}

	summary := &model.BroadcastSummary{}
	for _, identity := range identities {
		if err := b.sender.SendText(ctx, identity, text, transport.KeyboardNone); err != nil {
			summary.Failed++
			broadcastDeliveries.WithLabelValues("failed").Inc()
			b.logger.Warn("broadcast delivery failed",
				zap.Int64("identity", identity),
				zap.Error(err))
		} else {
			summary.Sent++
			broadcastDeliveries.WithLabelValues("sent").Inc()
		}

		if b.pace > 0 {
			time.Sleep(b.pace)
		}
	}

	b.logger.Info("broadcast finished",
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed))

	return summary, nil
}
