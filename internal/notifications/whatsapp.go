package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storeops/internal/common"
)

type WhatsAppConfig struct {
	APIURL   string
	Token    string
	Instance string
}

func (c WhatsAppConfig) Configured() bool {
	return c.APIURL != "" && c.Token != "" && c.Instance != ""
}

// WhatsAppClient talks to an Evolution-style gateway: POST {api}/message/sendText/{instance}.
type WhatsAppClient struct {
	config     WhatsAppConfig
	httpClient *http.Client
}

func NewWhatsAppClient(config WhatsAppConfig, timeout time.Duration) *WhatsAppClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WhatsAppClient{config: config, httpClient: &http.Client{Timeout: timeout}}
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

func (c *WhatsAppClient) Send(ctx context.Context, phone, message string) error {
	if !c.config.Configured() {
		return ErrNotConfigured
	}
	number := NormalizePhone(phone)
	if number == "" {
		return fmt.Errorf("invalid phone number %q", phone)
	}

	payload, err := json.Marshal(sendTextRequest{Number: number, Text: message})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/message/sendText/%s", strings.TrimRight(c.config.APIURL, "/"), c.config.Instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.config.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// NormalizePhone keeps digits and adds the Brazil country code to local numbers.
func NormalizePhone(phone string) string {
	digits := common.OnlyDigits(phone)
	switch len(digits) {
	case 10, 11:
		return "55" + digits
	case 12, 13:
		return digits
	}
	return ""
}
