package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookDispatcher POSTs the rendered payload as JSON to the URL in the
// channel config. Timeouts count as delivery failure.
type WebhookDispatcher struct {
	client *http.Client
}

func NewWebhook(timeout time.Duration) *WebhookDispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookDispatcher{client: &http.Client{Timeout: timeout}}
}

func (d *WebhookDispatcher) Name() string { return "webhook" }

type webhookBody struct {
	Address string `json:"address"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
}

func (d *WebhookDispatcher) Send(ctx context.Context, payload Payload) error {
	if payload.Address == "" {
		return ErrMissingAddress
	}

	url, _ := payload.Config["url"].(string)
	if url == "" {
		// The assignment address itself may be the endpoint.
		url = payload.Address
	}

	body, err := json.Marshal(webhookBody{
		Address: payload.Address,
		Subject: payload.Subject,
		Text:    payload.Text,
		HTML:    payload.HTML,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if headers, ok := payload.Config["headers"].(map[string]any); ok {
		for k, v := range headers {
			if s, ok := v.(string); ok {
				req.Header.Set(k, s)
			}
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s responded %d", url, resp.StatusCode)
	}
	return nil
}
