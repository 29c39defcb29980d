package otp

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SMSClient delivers codes through the Fast2SMS transactional API.
type SMSClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewSMSClient creates a new SMS client
func NewSMSClient(baseURL, apiKey string, log zerolog.Logger) *SMSClient {
	return &SMSClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With().Str("client", "fast2sms").Logger(),
	}
}

// SendCode delivers a verification code to a mobile number.
func (c *SMSClient) SendCode(mobile, code string) error {
	form := url.Values{}
	form.Set("route", "otp")
	form.Set("variables_values", code)
	form.Set("numbers", mobile)

	req, err := http.NewRequest(http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build SMS request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("SMS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS API returned status %d", resp.StatusCode)
	}

	c.log.Debug().Str("mobile", mobile).Msg("Verification SMS sent")
	return nil
}
