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

// CRMClient talks to the remote lead persistence API. It implements
// models.LeadAPI.
type CRMClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCRMClient(baseURL string) *CRMClient {
	return &CRMClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *CRMClient) SearchLeads(ctx context.Context, query string) ([]models.Lead, error) {
	endpoint := fmt.Sprintf("%s/leads/search?q=%s", c.baseURL, url.QueryEscape(query))

	var leads []models.Lead
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &leads); err != nil {
		return nil, fmt.Errorf("error searching leads: %w", err)
	}
	return leads, nil
}

func (c *CRMClient) CreateLead(ctx context.Context, fields models.LeadFields) (*models.Lead, error) {
	endpoint := c.baseURL + "/leads"

	lead := &models.Lead{}
	if err := c.doJSON(ctx, http.MethodPost, endpoint, fields, lead); err != nil {
		return nil, fmt.Errorf("error creating lead: %w", err)
	}
	return lead, nil
}

func (c *CRMClient) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	endpoint := fmt.Sprintf("%s/leads/%s", c.baseURL, url.PathEscape(id))

	lead := &models.Lead{}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, lead); err != nil {
		return nil, fmt.Errorf("error getting lead %s: %w", id, err)
	}
	return lead, nil
}

func (c *CRMClient) LinkConversationToLead(ctx context.Context, contactNumber string, leadID string) error {
	endpoint := c.baseURL + "/conversations/link"

	body := map[string]string{
		"contact_number": contactNumber,
		"lead_id":        leadID,
	}
	if err := c.doJSON(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		return fmt.Errorf("error linking conversation to lead %s: %w", leadID, err)
	}
	return nil
}

func (c *CRMClient) MarkConversationRead(ctx context.Context, contactNumber string) error {
	endpoint := c.baseURL + "/conversations/mark-read"

	body := map[string]string{"contact_number": contactNumber}
	if err := c.doJSON(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		return fmt.Errorf("error marking conversation read: %w", err)
	}
	return nil
}

func (c *CRMClient) doJSON(ctx context.Context, method, endpoint string, in, out interface{}) error {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error encoding request: %v", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("error building request: %v", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("error decoding response: %v", err)
		}
	}
	return nil
}
