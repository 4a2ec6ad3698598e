package bot

import (
	"context"
	"strings"
	"sync"

	"promo-campaign/internal/repository"
	"promo-campaign/internal/service"
	"promo-campaign/internal/session"
	"promo-campaign/internal/transport"
	"promo-campaign/pkg/phone"
	"promo-campaign/pkg/promo"

	"go.uber.org/zap"
)

// deepLinkPrefix marks an invitation token on the start command,
// e.g. "/start code_AR-9K2M4P".
const deepLinkPrefix = "code_"

// Dispatcher is the registration state machine. It reads the session's
// current stage first and routes every inbound update to exactly one
// handler; stage is never inferred from which handler happened to fire.
type Dispatcher struct {
	sessions     session.Store
	participants repository.ParticipantRepository
	redemption   *service.Redemption
	broadcast    *service.Broadcast
	sender       transport.Sender
	operatorID   int64
	logger       *zap.Logger

	mu      sync.Mutex
	tickets map[string]int64 // question ticket -> asking participant
}

// NewDispatcher creates the state machine over its collaborators.
func NewDispatcher(
	sessions session.Store,
	participants repository.ParticipantRepository,
	redemption *service.Redemption,
	broadcast *service.Broadcast,
	sender transport.Sender,
	operatorID int64,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		sessions:     sessions,
		participants: participants,
		redemption:   redemption,
		broadcast:    broadcast,
		sender:       sender,
		operatorID:   operatorID,
		logger:       logger,
		tickets:      make(map[string]int64),
	}
}

// Run consumes inbound updates until the context ends or the channel
// closes. Each update is handled on its own goroutine; ordering across
// identities is not guaranteed and not relied upon.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan transport.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			go d.Handle(ctx, u)
		}
	}
}

// isOperator is the single capability predicate consulted by every
// operator-only transition.
func (d *Dispatcher) isOperator(identity int64) bool {
	return identity == d.operatorID
}

func (d *Dispatcher) keyboardFor(identity int64) transport.Keyboard {
	if d.isOperator(identity) {
		return transport.KeyboardOperator
	}
	return transport.KeyboardParticipant
}

// Handle processes one inbound update.
func (d *Dispatcher) Handle(ctx context.Context, u transport.Update) {
	switch u.Command {
	case "start":
		d.handleStart(ctx, u)
		return
	case "reply":
		d.handleReplyTrigger(ctx, u)
		return
	}

	sess, err := d.sessions.Get(ctx, u.Identity)
	if err != nil {
		d.logger.Error("session load failed", zap.Int64("identity", u.Identity), zap.Error(err))
		d.send(ctx, u.Identity, msgRetry, transport.KeyboardNone)
		return
	}
	if sess == nil {
		sess = session.New(u.Identity)
	}

	if u.Contact != nil {
		d.handleContact(ctx, sess, u)
		return
	}

	// Manual phone entry is never accepted, only the verified
	// contact-share mechanism. AwaitingName is exempt so a phone-shaped
	// name is not swallowed.
	if sess.Stage != session.StageAwaitingName && phone.LooksTyped(u.Text) {
		d.send(ctx, u.Identity, msgManualPhoneRejected, transport.KeyboardPhoneRequest)
		return
	}

	switch sess.Stage {
	case session.StageAwaitingPhone:
		d.send(ctx, u.Identity, msgSharePhonePrompt, transport.KeyboardPhoneRequest)
	case session.StageAwaitingName:
		d.handleName(ctx, sess, u)
	case session.StageAwaitingSurname:
		d.handleSurname(ctx, sess, u)
	case session.StageAwaitingCode:
		d.handleCodeStage(ctx, sess, u)
	case session.StageAwaitingQuestion:
		d.handleQuestion(ctx, sess, u)
	case session.StageAwaitingBroadcastText:
		d.handleBroadcastText(ctx, sess, u)
	case session.StageAwaitingAnswer:
		d.handleAnswer(ctx, sess, u)
	default:
		d.logger.Warn("unknown session stage",
			zap.Int64("identity", u.Identity),
			zap.String("stage", string(sess.Stage)))
		d.send(ctx, u.Identity, msgRetry, transport.KeyboardNone)
	}
}

// deepLinkCode extracts a pending code from an invitation token suffix.
func deepLinkCode(args string) (string, bool) {
	token, found := strings.CutPrefix(strings.TrimSpace(args), deepLinkPrefix)
	if !found || !promo.Validate(token) {
		return "", false
	}
	return promo.Canonicalize(token), true
}

func (d *Dispatcher) send(ctx context.Context, identity int64, text string, kb transport.Keyboard) {
	if err := d.sender.SendText(ctx, identity, text, kb); err != nil {
		d.logger.Warn("send failed", zap.Int64("identity", identity), zap.Error(err))
	}
}

func (d *Dispatcher) putSession(ctx context.Context, sess *session.Session) {
	if err := d.sessions.Put(ctx, sess); err != nil {
		d.logger.Error("session save failed", zap.Int64("identity", sess.Identity), zap.Error(err))
	}
}

func (d *Dispatcher) registerTicket(ticket string, identity int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tickets[ticket] = identity
}

func (d *Dispatcher) takeTicket(ticket string) (int64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	identity, ok := d.tickets[ticket]
	if ok {
		delete(d.tickets, ticket)
	}
	return identity, ok
}
