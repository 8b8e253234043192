package idprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spec-kit/travel-community/internal/config"
	"github.com/spec-kit/travel-community/internal/domain"
)

// ErrNotConfigured is returned when provider credentials are missing.
var ErrNotConfigured = errors.New("identity provider not configured")

// SessionCreator starts hosted verification sessions.
type SessionCreator interface {
	CreateSession(ctx context.Context, userID string, sessionType domain.SessionType) (*Session, error)
}

// Session is a hosted verification flow the user is redirected to.
type Session struct {
	ID  string
	URL string
}

// Client calls the provider's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	clientID   string
	appURL     string
	httpClient *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg config.ProviderConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		clientID:   cfg.ClientID,
		appURL:     strings.TrimRight(cfg.AppURL, "/"),
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout()},
	}
}

type createSessionRequest struct {
	CallbackURL       string   `json:"callback_url"`
	RedirectURL       string   `json:"redirect_url"`
	CustomerUserID    string   `json:"customer_user_id"`
	ClientID          string   `json:"client_id,omitempty"`
	VerificationTypes []string `json:"verification_types"`
}

type createSessionResponse struct {
	SessionID       string `json:"session_id"`
	ID              string `json:"id"`
	VerificationURL string `json:"verification_url"`
	URL             string `json:"url"`
	SessionURL      string `json:"session_url"`
	Message         string `json:"message"`
	Detail          string `json:"detail"`
}

// checks requested from the provider for each session type
var sessionChecks = map[domain.SessionType][]string{
	domain.SessionTypeBasic: {},
	domain.SessionTypeID:    {"OCR"},
	domain.SessionTypeFace:  {"OCR", "FACE"},
}

// CreateSession asks the provider for a hosted verification URL.
func (c *Client) CreateSession(ctx context.Context, userID string, sessionType domain.SessionType) (*Session, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	checks, ok := sessionChecks[sessionType]
	if !ok {
		return nil, fmt.Errorf("unsupported session type %q", sessionType)
	}

	payload := createSessionRequest{
		CallbackURL:       c.appURL + "/webhooks/provider",
		RedirectURL:       c.appURL + "/profile?verification=completed",
		CustomerUserID:    userID,
		ClientID:          c.clientID,
		VerificationTypes: checks,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/session/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}

	var decoded createSessionResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil {
			if msg := firstNonEmpty(decoded.Message, decoded.Detail); msg != "" {
				return nil, fmt.Errorf("provider returned %d: %s", resp.StatusCode, msg)
			}
		}
		return nil, fmt.Errorf("provider returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode provider response: %w", decodeErr)
	}

	session := &Session{
		ID:  firstNonEmpty(decoded.SessionID, decoded.ID),
		URL: firstNonEmpty(decoded.VerificationURL, decoded.URL, decoded.SessionURL),
	}
	if session.URL == "" {
		return nil, errors.New("provider response carried no verification url")
	}
	return session, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
