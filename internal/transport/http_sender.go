package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// outboundMessage is the JSON body posted to the transport collaborator.
type outboundMessage struct {
	Identity int64    `json:"identity"`
	Text     string   `json:"text"`
	Keyboard Keyboard `json:"keyboard,omitempty"`
}

// HTTPSender delivers outbound messages by posting them to the chat
// transport collaborator's endpoint.
type HTTPSender struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSender creates a sender posting to the given endpoint.
func NewHTTPSender(endpoint string) *HTTPSender {
	return &HTTPSender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SendText posts one message to the transport endpoint.
func (s *HTTPSender) SendText(ctx context.Context, identity int64, text string, keyboard Keyboard) error {
	body, err := json.Marshal(outboundMessage{
		Identity: identity,
		Text:     text,
		Keyboard: keyboard,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("transport returned status %d", resp.StatusCode)
	}

	return nil
}
