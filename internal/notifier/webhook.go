package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/NinjaGame428/church-management-sub001/internal/config"
)

// WebhookNotifier posts email/SMS payloads to configured gateway
// webhooks. A channel with an empty URL is disabled and sends no-op.
type WebhookNotifier struct {
	cfg    config.NotificationConfig
	client *http.Client
	logger *zap.Logger
}

// NewWebhookNotifier constructs the notifier.
func NewWebhookNotifier(cfg config.NotificationConfig, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
	}
}

type emailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type smsPayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// SendEmail posts the message to the email gateway.
func (n *WebhookNotifier) SendEmail(ctx context.Context, to, subject, body string) error {
	if n.cfg.EmailWebhookURL == "" {
		n.logger.Debug("email channel disabled", zap.String("to", to))
		return nil
	}
	return n.post(ctx, n.cfg.EmailWebhookURL, emailPayload{
		From:    n.cfg.EmailFrom,
		To:      to,
		Subject: subject,
		Body:    body,
	})
}

// SendSMS posts the message to the SMS gateway.
func (n *WebhookNotifier) SendSMS(ctx context.Context, to, message string) error {
	if n.cfg.SMSWebhookURL == "" {
		n.logger.Debug("sms channel disabled", zap.String("to", to))
		return nil
	}
	return n.post(ctx, n.cfg.SMSWebhookURL, smsPayload{To: to, Message: message})
}

func (n *WebhookNotifier) post(ctx context.Context, url string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}
