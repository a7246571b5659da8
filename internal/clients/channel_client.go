package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"leadflow/internal/models"
)

// ChannelClient talks to the messaging channel gateway. It implements
// models.ChannelAPI. Session status calls use a short timeout so a slow
// gateway degrades to the gate's fail-closed default instead of blocking
// the reply composer.
type ChannelClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewChannelClient(baseURL string) *ChannelClient {
	return &ChannelClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *ChannelClient) GetSessionStatus(ctx context.Context, contactNumber string) (*models.SessionStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/session-status?number=%s", c.baseURL, url.QueryEscape(contactNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error getting session status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from session-status", resp.StatusCode)
	}

	status := &models.SessionStatus{}
	if err := json.NewDecoder(resp.Body).Decode(status); err != nil {
		return nil, fmt.Errorf("error decoding session status: %v", err)
	}
	return status, nil
}

func (c *ChannelClient) SendFreeform(ctx context.Context, contactNumber string, text string) error {
	body := map[string]string{
		"recipient": contactNumber,
		"message":   text,
	}
	if err := c.post(ctx, "/send-message", body); err != nil {
		return fmt.Errorf("error sending freeform message: %w", err)
	}
	return nil
}

func (c *ChannelClient) SendTemplate(ctx context.Context, contactNumber string, templateName string, languageCode string) error {
	body := map[string]string{
		"recipient": contactNumber,
		"template":  templateName,
		"language":  languageCode,
	}
	if err := c.post(ctx, "/send-template", body); err != nil {
		return fmt.Errorf("error sending template message: %w", err)
	}
	return nil
}

func (c *ChannelClient) post(ctx context.Context, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error encoding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(data))
	}
	return nil
}
