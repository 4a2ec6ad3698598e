package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"promo-campaign/internal/model"
	"promo-campaign/internal/session"
	"promo-campaign/internal/transport"
	apperrors "promo-campaign/pkg/errors"
	"promo-campaign/pkg/phone"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handleStart greets a known participant or begins onboarding for a fresh
// identity. An invitation token on the command is captured as the pending
// deep-link code.
func (d *Dispatcher) handleStart(ctx context.Context, u transport.Update) {
	sess, err := d.sessions.Get(ctx, u.Identity)
	if err != nil {
		d.logger.Error("session load failed", zap.Int64("identity", u.Identity), zap.Error(err))
		d.send(ctx, u.Identity, msgRetry, transport.KeyboardNone)
		return
	}
	if sess == nil {
		sess = session.New(u.Identity)
	}

	if code, ok := deepLinkCode(u.Args); ok {
		sess.PendingCode = code
	}

	participant, err := d.participants.FindByIdentity(ctx, u.Identity)
	switch {
	case err == nil:
		sess.Stage = session.StageAwaitingCode
		if sess.PendingCode != "" {
			d.redeemPending(ctx, sess)
		}
		d.putSession(ctx, sess)
		d.send(ctx, u.Identity, msgGreeting(participant.Name, participant.Chances), d.keyboardFor(u.Identity))
	case errors.Is(err, apperrors.ErrNotRegistered):
		sess.Stage = session.StageAwaitingPhone
		d.putSession(ctx, sess)
		d.send(ctx, u.Identity, msgWelcome, transport.KeyboardPhoneRequest)
	default:
		d.logger.Error("participant lookup failed", zap.Int64("identity", u.Identity), zap.Error(err))
		d.send(ctx, u.Identity, msgRetry, transport.KeyboardNone)
	}
}

// redeemPending runs the normal redemption protocol for a captured
// deep-link code. Failure is reported but never blocks a later manual
// submission of a different code. The pending code is consumed either way.
func (d *Dispatcher) redeemPending(ctx context.Context, sess *session.Session) {
	code := sess.PendingCode
	sess.PendingCode = ""

	result, err := d.redemption.Redeem(ctx, sess.Identity, code)
	if err == nil {
		d.send(ctx, sess.Identity, msgDeepLinkAccepted(result), d.keyboardFor(sess.Identity))
		return
	}

	var reason string
	switch {
	case errors.Is(err, apperrors.ErrCodeNotFound):
		reason = "The code was not found."
	case errors.Is(err, apperrors.ErrCodeAlreadyAssigned):
		reason = "The code was already used."
	case errors.Is(err, apperrors.ErrQuotaExceeded):
		reason = msgQuotaExceeded
	default:
		reason = msgRetry
	}
	d.send(ctx, sess.Identity, msgDeepLinkFailed(code, reason), d.keyboardFor(sess.Identity))
}

// handleContact consumes a verified contact share while awaiting a phone.
// Contact shares in any other stage are ignored.
func (d *Dispatcher) handleContact(ctx context.Context, sess *session.Session, u transport.Update) {
	if sess.Stage != session.StageAwaitingPhone {
		d.logger.Debug("contact share outside phone stage ignored",
			zap.Int64("identity", u.Identity),
			zap.String("stage", string(sess.Stage)))
		return
	}

	normalized, err := phone.Normalize(u.Contact.PhoneNumber)
	if err != nil {
		d.send(ctx, u.Identity, msgPhoneInvalid, transport.KeyboardPhoneRequest)
		return
	}

	exists, err := d.participants.PhoneExists(ctx, normalized)
	if err != nil {
		d.logger.Error("phone lookup failed", zap.Int64("identity", u.Identity), zap.Error(err))
		d.send(ctx, u.Identity, msgRetry, transport.KeyboardPhoneRequest)
		return
	}
	if exists {
		d.send(ctx, u.Identity, msgPhoneTaken, transport.KeyboardPhoneRequest)
		return
	}

	sess.Phone = normalized
	sess.Stage = session.StageAwaitingName
	d.putSession(ctx, sess)
	d.send(ctx, u.Identity, msgAskName, transport.KeyboardNone)
}

func (d *Dispatcher) handleName(ctx context.Context, sess *session.Session, u transport.Update) {
	text := strings.TrimSpace(u.Text)
	if isMenuCommand(text) {
		return
	}
	if text == "" {
		d.send(ctx, u.Identity, msgAskName, transport.KeyboardNone)
		return
	}

	sess.Name = text
	sess.Stage = session.StageAwaitingSurname
	d.putSession(ctx, sess)
	d.send(ctx, u.Identity, msgAskSurname, transport.KeyboardNone)
}

// handleSurname completes registration: the participant row is created
// here, and only here.
func (d *Dispatcher) handleSurname(ctx context.Context, sess *session.Session, u transport.Update) {
	text := strings.TrimSpace(u.Text)
	if isMenuCommand(text) {
		return
	}
	if text == "" {
		d.send(ctx, u.Identity, msgAskSurname, transport.KeyboardNone)
		return
	}

	participant := &model.Participant{
		Identity:  u.Identity,
		Phone:     sess.Phone,
		Name:      sess.Name,
		Surname:   text,
		CreatedAt: time.Now(),
	}

	if err := d.participants.Create(ctx, participant); err != nil {
		if errors.Is(err, apperrors.ErrPhoneAlreadyRegistered) {
			// Lost a race for the phone since the contact-share check.
			sess.Phone = ""
			sess.Name = ""
			sess.Stage = session.StageAwaitingPhone
			d.putSession(ctx, sess)
			d.send(ctx, u.Identity, msgPhoneTaken, transport.KeyboardPhoneRequest)
			return
		}
		// Stay in this stage so the participant can simply retry.
		d.logger.Error("participant create failed", zap.Int64("identity", u.Identity), zap.Error(err))
		d.send(ctx, u.Identity, msgRetry, transport.KeyboardNone)
		return
	}

	d.send(ctx, u.Identity, msgRegistered(participant), d.keyboardFor(u.Identity))

	if sess.PendingCode != "" {
		d.redeemPending(ctx, sess)
	}

	// Registration done: transient fields are discarded, the session
	// settles into its stable home stage.
	sess.Phone = ""
	sess.Name = ""
	sess.Stage = session.StageAwaitingCode
	d.putSession(ctx, sess)
}

// handleCodeStage dispatches menu commands and treats everything else as a
// code submission. AwaitingCode is the stable home stage; it is never left
// except into the side flows.
func (d *Dispatcher) handleCodeStage(ctx context.Context, sess *session.Session, u transport.Update) {
	text := strings.TrimSpace(u.Text)

	switch text {
	case MenuSubmitCode:
		d.send(ctx, u.Identity, msgCodePrompt, d.keyboardFor(u.Identity))
		return
	case MenuMyCodes:
		d.handleMyCodes(ctx, u.Identity)
		return
	case MenuAskQuestion:
		sess.Stage = session.StageAwaitingQuestion
		d.putSession(ctx, sess)
		d.send(ctx, u.Identity, msgAskQuestionPrompt, transport.KeyboardNone)
		return
	case MenuBroadcast:
		if !d.isOperator(u.Identity) {
			d.send(ctx, u.Identity, msgPermissionDenied, d.keyboardFor(u.Identity))
			return
		}
		sess.Stage = session.StageAwaitingBroadcastText
		d.putSession(ctx, sess)
		d.send(ctx, u.Identity, msgBroadcastPrompt, transport.KeyboardNone)
		return
	case MenuStats:
		if !d.isOperator(u.Identity) {
			d.send(ctx, u.Identity, msgPermissionDenied, d.keyboardFor(u.Identity))
			return
		}
		d.handleStats(ctx, u.Identity)
		return
	}

	result, err := d.redemption.Redeem(ctx, u.Identity, text)
	if err != nil {
		d.send(ctx, u.Identity, redemptionErrorMessage(err, text), d.keyboardFor(u.Identity))
		return
	}
	d.send(ctx, u.Identity, msgCodeAccepted(result), d.keyboardFor(u.Identity))
}

func redemptionErrorMessage(err error, submitted string) string {
	switch {
	case errors.Is(err, apperrors.ErrMalformedCode):
		return msgMalformedCode
	case errors.Is(err, apperrors.ErrNotRegistered):
		return msgNotRegistered
	case errors.Is(err, apperrors.ErrCodeNotFound):
		return msgCodeNotFound(strings.ToUpper(strings.TrimSpace(submitted)))
	case errors.Is(err, apperrors.ErrCodeAlreadyAssigned):
		return msgCodeAlreadyAssigned(strings.ToUpper(strings.TrimSpace(submitted)))
	case errors.Is(err, apperrors.ErrQuotaExceeded):
		return msgQuotaExceeded
	default:
		return msgRetry
	}
}

func (d *Dispatcher) handleMyCodes(ctx context.Context, identity int64) {
	codes, chances, err := d.redemption.ListCodes(ctx, identity)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotRegistered) {
			d.send(ctx, identity, msgNotRegistered, transport.KeyboardPhoneRequest)
			return
		}
		d.send(ctx, identity, msgRetry, d.keyboardFor(identity))
		return
	}
	d.send(ctx, identity, msgMyCodes(codes, chances), d.keyboardFor(identity))
}

func (d *Dispatcher) handleStats(ctx context.Context, identity int64) {
	stats, err := d.redemption.Stats(ctx)
	if err != nil {
		d.send(ctx, identity, msgRetry, d.keyboardFor(identity))
		return
	}
	d.send(ctx, identity, msgStats(stats), d.keyboardFor(identity))
}

// handleQuestion forwards the participant's question to the operator with
// an embedded reply trigger.
func (d *Dispatcher) handleQuestion(ctx context.Context, sess *session.Session, u transport.Update) {
	text := strings.TrimSpace(u.Text)
	if isMenuCommand(text) {
		return
	}
	if text == "" {
		d.send(ctx, u.Identity, msgAskQuestionPrompt, transport.KeyboardNone)
		return
	}

	participant, err := d.participants.FindByIdentity(ctx, u.Identity)
	if err != nil {
		d.logger.Error("participant lookup failed", zap.Int64("identity", u.Identity), zap.Error(err))
		d.send(ctx, u.Identity, msgRetry, transport.KeyboardNone)
		return
	}

	ticket := uuid.NewString()
	if err := d.sender.SendText(ctx, d.operatorID, msgQuestionForOperator(participant, ticket, text), transport.KeyboardNone); err != nil {
		// Stay in the question stage so the participant can retry.
		d.logger.Warn("question forwarding failed", zap.Int64("identity", u.Identity), zap.Error(err))
		d.send(ctx, u.Identity, msgRetry, transport.KeyboardNone)
		return
	}
	d.registerTicket(ticket, u.Identity)

	sess.Stage = session.StageAwaitingCode
	d.putSession(ctx, sess)
	d.send(ctx, u.Identity, msgQuestionForwarded, d.keyboardFor(u.Identity))
}

// handleReplyTrigger arms the operator's session to answer the participant
// behind a question ticket.
func (d *Dispatcher) handleReplyTrigger(ctx context.Context, u transport.Update) {
	if !d.isOperator(u.Identity) {
		d.send(ctx, u.Identity, msgPermissionDenied, d.keyboardFor(u.Identity))
		return
	}

	target, ok := d.takeTicket(strings.TrimSpace(u.Args))
	if !ok {
		d.send(ctx, u.Identity, "Unknown or already answered ticket.", transport.KeyboardOperator)
		return
	}

	sess, err := d.sessions.Get(ctx, u.Identity)
	if err != nil {
		d.logger.Error("session load failed", zap.Int64("identity", u.Identity), zap.Error(err))
		return
	}
	if sess == nil {
		sess = session.New(u.Identity)
	}
	sess.Stage = session.StageAwaitingAnswer
	sess.ReplyTo = target
	d.putSession(ctx, sess)
	d.send(ctx, u.Identity, msgAnswerPrompt, transport.KeyboardNone)
}

// handleAnswer relays the operator's text to the recorded participant.
func (d *Dispatcher) handleAnswer(ctx context.Context, sess *session.Session, u transport.Update) {
	if !d.isOperator(u.Identity) {
		// Operator-only by policy, not just by routing.
		sess.Stage = session.StageAwaitingCode
		sess.ReplyTo = 0
		d.putSession(ctx, sess)
		d.send(ctx, u.Identity, msgPermissionDenied, d.keyboardFor(u.Identity))
		return
	}

	if sess.ReplyTo == 0 {
		sess.Stage = session.StageAwaitingCode
		d.putSession(ctx, sess)
		d.send(ctx, u.Identity, msgRetry, transport.KeyboardOperator)
		return
	}

	err := d.sender.SendText(ctx, sess.ReplyTo, msgAnswerForParticipant(u.Text), transport.KeyboardNone)
	if err != nil {
		d.logger.Warn("answer delivery failed",
			zap.Int64("participant", sess.ReplyTo),
			zap.Error(err))
	}

	sess.Stage = session.StageAwaitingCode
	sess.ReplyTo = 0
	d.putSession(ctx, sess)
	d.send(ctx, u.Identity, msgAnswerDelivered(err == nil), transport.KeyboardOperator)
}

// handleBroadcastText fans the operator's message out to every participant.
func (d *Dispatcher) handleBroadcastText(ctx context.Context, sess *session.Session, u transport.Update) {
	sess.Stage = session.StageAwaitingCode
	d.putSession(ctx, sess)

	if !d.isOperator(u.Identity) {
		d.send(ctx, u.Identity, msgPermissionDenied, d.keyboardFor(u.Identity))
		return
	}

	summary, err := d.broadcast.Send(ctx, u.Text)
	if err != nil {
		d.logger.Error("broadcast failed", zap.Error(err))
		d.send(ctx, u.Identity, msgRetry, transport.KeyboardOperator)
		return
	}
	d.send(ctx, u.Identity, msgBroadcastSummary(summary), transport.KeyboardOperator)
}
