package session

import "context"

// Stage is a participant's position in the onboarding sequence.
type Stage string

const (
	// StageAwaitingPhone is the implicit initial stage: a fresh identity
	// with no session starts here.
	StageAwaitingPhone         Stage = "awaiting_phone"
	StageAwaitingName          Stage = "awaiting_name"
	StageAwaitingSurname       Stage = "awaiting_surname"
	StageAwaitingCode          Stage = "awaiting_code"
	StageAwaitingBroadcastText Stage = "awaiting_broadcast_text"
	StageAwaitingQuestion      Stage = "awaiting_question"
	StageAwaitingAnswer        Stage = "awaiting_answer"
)

// Session is the ephemeral per-identity record sequencing multi-step input.
// It is not the system of record: losing it at worst restarts registration
// from the last externally visible step, and never corrupts participant or
// code state.
type Session struct {
	Identity int64  `json:"identity"`
	Stage    Stage  `json:"stage"`
	Phone    string `json:"phone,omitempty"`
	Name     string `json:"name,omitempty"`
	// PendingCode is a deep-link code captured from an invitation token,
	// redeemed automatically once the participant reaches the code stage.
	PendingCode string `json:"pending_code,omitempty"`
	// ReplyTo is the participant a pending operator answer goes to.
	ReplyTo int64 `json:"reply_to,omitempty"`
}

// New returns a fresh session in the implicit initial stage.
func New(identity int64) *Session {
	return &Session{Identity: identity, Stage: StageAwaitingPhone}
}

// Store keeps sessions keyed by identity. Get returns (nil, nil) when no
// session exists.
type Store interface {
	Get(ctx context.Context, identity int64) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, identity int64) error
}
