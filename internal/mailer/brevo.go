package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const brevoAPIURL = "https://api.brevo.com/v3/smtp/email"

// BrevoMailer sends transactional email through the Brevo API.
type BrevoMailer struct {
	apiKey     string
	fromEmail  string
	fromName   string
	clientURL  string
	httpClient *http.Client
	configured bool
}

// NewBrevoMailer creates a Brevo-backed Mailer. clientURL is the frontend
// base used to build password-reset links.
func NewBrevoMailer(apiKey, fromEmail, fromName, clientURL string) *BrevoMailer {
	m := &BrevoMailer{
		clientURL:  clientURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if apiKey != "" && fromEmail != "" && fromName != "" {
		m.apiKey = apiKey
		m.fromEmail = fromEmail
		m.fromName = fromName
		m.configured = true
	}
	return m
}

// IsConfigured reports whether the client was initialized with credentials.
func (m *BrevoMailer) IsConfigured() bool {
	return m.configured
}

func (m *BrevoMailer) SendVerification(ctx context.Context, email, name, otp string) error {
	subject := "Verify your email"
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your verification code is: <strong>%s</strong></p><p>This code expires in 10 minutes.</p>",
		name, otp,
	)
	return m.send(ctx, email, subject, html)
}

func (m *BrevoMailer) SendWelcome(ctx context.Context, email, name string) error {
	subject := "Welcome aboard"
	html := fmt.Sprintf("<p>Hi %s,</p><p>Your email has been verified. Welcome!</p>", name)
	return m.send(ctx, email, subject, html)
}

func (m *BrevoMailer) SendPasswordReset(ctx context.Context, email, name, rawToken string) error {
	subject := "Reset your password"
	resetURL := fmt.Sprintf("%s/reset/%s", m.clientURL, rawToken)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Click <a href=%q>here</a> to reset your password.</p><p>This link expires in 15 minutes.</p>",
		name, resetURL,
	)
	return m.send(ctx, email, subject, html)
}

type sendEmailReq struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HtmlContent string              `json:"htmlContent"`
}

func (m *BrevoMailer) send(ctx context.Context, toEmail, subject, html string) error {
	if !m.configured {
		return errors.New("brevo mailer not configured")
	}

	reqBody := sendEmailReq{
		Sender:      map[string]string{"email": m.fromEmail, "name": m.fromName},
		To:          []map[string]string{{"email": toEmail}},
		Subject:     subject,
		HtmlContent: html,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal email request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPIURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create brevo request: %w", err)
	}
	httpReq.Header.Set("api-key", m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("brevo send email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorBody map[string]interface{}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errorBody); decodeErr != nil {
			return fmt.Errorf("brevo API error: status %d", resp.StatusCode)
		}
		return fmt.Errorf("brevo API error: status %d, body: %v", resp.StatusCode, errorBody)
	}
	return nil
}
