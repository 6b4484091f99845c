package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Claim describes a resource's first stamping, for notification purposes.
type Claim struct {
	ResourceID   string
	ResourceType string
	Actor        string
	Date         string
}

// SlackClient handles Slack notifications.
type SlackClient struct {
	WebhookURL string
	Channel    string // Optional: Override default channel
}

// NewSlackClient initializes the Slack integration.
func NewSlackClient(webhookURL string, channel string) *SlackClient {
	return &SlackClient{
		WebhookURL: webhookURL,
		Channel:    channel,
	}
}

// SendClaim announces a newly claimed resource. A no-op without a webhook URL.
func (s *SlackClient) SendClaim(claim Claim) error {
	if s.WebhookURL == "" {
		return nil
	}

	payload := s.constructPayload(claim)

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}

	req, err := http.NewRequest("POST", s.WebhookURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("received non-200 status from slack: %d", resp.StatusCode)
	}

	return nil
}

// constructPayload builds the message blocks.
func (s *SlackClient) constructPayload(claim Claim) map[string]interface{} {
	blocks := []map[string]interface{}{
		// Header
		{
			"type": "header",
			"text": map[string]interface{}{
				"type": "plain_text",
				"text": "🏷️ New Resource Claimed",
			},
		},
		// Context: Actor & Date
		{
			"type": "context",
			"elements": []map[string]interface{}{
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Creator:* %s | *Date:* %s", claim.Actor, claim.Date),
				},
			},
		},
		{
			"type": "divider",
		},
		// Section: Resource details
		{
			"type": "section",
			"fields": []map[string]interface{}{
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Type:*\n%s", claim.ResourceType),
				},
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Resource:*\n`%s`", claim.ResourceID),
				},
			},
		},
	}

	payload := map[string]interface{}{
		"blocks": blocks,
	}
	if s.Channel != "" {
		payload["channel"] = s.Channel
	}
	return payload
}
