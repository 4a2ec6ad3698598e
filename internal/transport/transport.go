package transport

import "context"

// Keyboard selects the reply-menu shown alongside an outbound message.
type Keyboard string

const (
	KeyboardNone         Keyboard = ""
	KeyboardPhoneRequest Keyboard = "phone_request"
	KeyboardParticipant  Keyboard = "participant"
	KeyboardOperator     Keyboard = "operator"
)

// Contact is a verified contact share from the chat transport. Free-typed
// phone text never arrives through this path.
type Contact struct {
	PhoneNumber string `json:"phone_number"`
}

// Update is one inbound unit of input from a participant.
type Update struct {
	Identity int64    `json:"identity"`
	Text     string   `json:"text,omitempty"`
	Contact  *Contact `json:"contact,omitempty"`
	Command  string   `json:"command,omitempty"`
	Args     string   `json:"args,omitempty"`
}

// Sender delivers text to a participant identity. The chat transport behind
// it is a black box; delivery failures surface as errors.
type Sender interface {
	SendText(ctx context.Context, identity int64, text string, keyboard Keyboard) error
}
