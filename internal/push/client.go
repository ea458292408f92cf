// Package push sends device push notifications through an Expo-style
// HTTP service: one POST per message, a per-message ticket back.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Sender delivers a single push message. Implemented by Client;
// faked in worker tests.
type Sender interface {
	Send(ctx context.Context, msg Message) (*Ticket, error)
}

// Client talks to the push service's send-message endpoint.
type Client struct {
	apiURL string
	hc     *http.Client
	logger *logrus.Logger
}

// NewClient builds a push client against the given send endpoint.
func NewClient(apiURL string, logger *logrus.Logger) *Client {
	return &Client{
		apiURL: apiURL,
		hc:     &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Send posts the message and decodes the first ticket of the answer.
func (c *Client) Send(ctx context.Context, msg Message) (*Ticket, error) {
	body, err := json.Marshal([]Message{msg})
	if err != nil {
		return nil, fmt.Errorf("marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read push response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithField("status", resp.StatusCode).Error("push service rejected request")
		return nil, fmt.Errorf("push service answered %d: %s", resp.StatusCode, string(respBody))
	}

	var envelope struct {
		Data []Ticket `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal push response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil, fmt.Errorf("push response carried no tickets")
	}
	return &envelope.Data[0], nil
}
