// Package telephony talks to the Twilio REST API: originating outbound
// calls and fetching call status. Only the two resources the orchestrator
// needs are wrapped; everything else stays provider-side.
package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/voxdial/internal/domain"
	"github.com/seu-repo/voxdial/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/voxdial/internal/ports"
)

// DefaultAPIBaseURL is the Twilio REST API root.
const DefaultAPIBaseURL = "https://api.twilio.com/2010-04-01"

// TwilioProvider implements ports.TelephonyProvider over Twilio's REST API.
type TwilioProvider struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *circuitbreaker.HTTPClient
	log        *zap.Logger
}

type twilioCallResponse struct {
	Sid          string `json:"sid"`
	Status       string `json:"status"`
	Duration     string `json:"duration"`
	ErrorCode    int    `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Config carries the Twilio credentials and endpoint.
type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	APIBaseURL string
}

// NewTwilioProvider creates the provider. Credentials are validated on
// use, not at construction, so the server can boot without them and fail
// fast on the first placement attempt instead.
func NewTwilioProvider(cfg Config, log *zap.Logger) *TwilioProvider {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}

	return &TwilioProvider{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		fromNumber: cfg.FromNumber,
		baseURL:    baseURL,
		httpClient: circuitbreaker.NewHTTPClient(circuitbreaker.DefaultSettings("twilio"), log),
		log:        log,
	}
}

var _ ports.TelephonyProvider = (*TwilioProvider)(nil)

func (p *TwilioProvider) checkCredentials() error {
	var missing []string
	if p.accountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if p.authToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if p.fromNumber == "" {
		missing = append(missing, "TWILIO_PHONE_NUMBER")
	}
	if len(missing) > 0 {
		return domain.NewConfigError(missing...)
	}
	return nil
}

// CreateCall originates an outbound call with webhookURL as the voice
// callback and returns the provider-assigned call SID.
func (p *TwilioProvider) CreateCall(ctx context.Context, to, webhookURL string) (string, error) {
	if err := p.checkCredentials(); err != nil {
		return "", err
	}

	data := url.Values{}
	data.Set("To", to)
	data.Set("From", p.fromNumber)
	data.Set("Url", webhookURL)
	data.Set("Method", "POST")

	reqURL := fmt.Sprintf("%s/Accounts/%s/Calls.json", p.baseURL, p.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("twilio: create request: %w", err)
	}
	req.SetBasicAuth(p.accountSID, p.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p.log.Info("Placing outbound call",
		zap.String("to", to),
		zap.String("from", p.fromNumber),
		zap.String("webhook", webhookURL),
	)

	result, err := p.doCall(req)
	if err != nil {
		return "", err
	}

	p.log.Info("Call created", zap.String("call_sid", result.Sid), zap.String("status", result.Status))
	return result.Sid, nil
}

// FetchCall retrieves the provider's current status and duration for a call.
func (p *TwilioProvider) FetchCall(ctx context.Context, callSid string) (*domain.CallStatusInfo, error) {
	if err := p.checkCredentials(); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/Accounts/%s/Calls/%s.json", p.baseURL, p.accountSID, callSid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("twilio: create request: %w", err)
	}
	req.SetBasicAuth(p.accountSID, p.authToken)

	result, err := p.doCall(req)
	if err != nil {
		return nil, err
	}

	return &domain.CallStatusInfo{
		Status:   domain.CallStatus(result.Status),
		Duration: result.Duration,
	}, nil
}

func (p *TwilioProvider) doCall(req *http.Request) (*twilioCallResponse, error) {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{Provider: "twilio", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("twilio: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &domain.ProviderError{
			Provider: "twilio",
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(body)),
		}
	}

	var result twilioCallResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("twilio: decode response: %w", err)
	}
	return &result, nil
}
