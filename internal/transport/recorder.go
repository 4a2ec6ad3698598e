package transport

import (
	"context"
	"sync"
)

// Recorded is one message captured by the Recorder.
type Recorded struct {
	Identity int64
	Text     string
	Keyboard Keyboard
}

// Recorder is a Sender that captures outbound messages for tests, with
// optional per-identity delivery failures.
type Recorder struct {
	mu       sync.Mutex
	messages []Recorded
	failFor  map[int64]error
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{failFor: make(map[int64]error)}
}

// FailFor makes deliveries to identity fail with err.
func (r *Recorder) FailFor(identity int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failFor[identity] = err
}

// SendText records the message, or fails if the identity is marked.
func (r *Recorder) SendText(ctx context.Context, identity int64, text string, keyboard Keyboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err, ok := r.failFor[identity]; ok {
		return err
	}
	r.messages = append(r.messages, Recorded{Identity: identity, Text: text, Keyboard: keyboard})
	return nil
}

// Messages returns a snapshot of everything recorded so far.
func (r *Recorder) Messages() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Recorded, len(r.messages))
	copy(out, r.messages)
	return out
}

// SentTo returns the messages delivered to one identity.
func (r *Recorder) SentTo(identity int64) []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Recorded
	for _, m := range r.messages {
		if m.Identity == identity {
			out = append(out, m)
		}
	}
	return out
}
