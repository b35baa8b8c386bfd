package registrar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// godaddyAdapter speaks the GoDaddy v1 domains API: JSON REST authenticated
// with an "sso-key key:secret" header.
type godaddyAdapter struct {
	BaseURL string
	Client  *http.Client
}

func init() {
	Register(CodeGoDaddy, &godaddyAdapter{
		BaseURL: "https://api.godaddy.com/v1",
		Client:  &http.Client{Timeout: 10 * time.Second},
	})
}

type godaddyRecord struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Data     string `json:"data"`
	TTL      int    `json:"ttl,omitempty"`
	Priority *int   `json:"priority,omitempty"`
}

func (a *godaddyAdapter) do(ctx context.Context, creds Credentials, method, url string, body, out any) error {
	if creds.APIKey == "" || creds.APISecret == "" {
		return newError(CodeGoDaddy, "auth", "api key and secret are required", ErrAuth)
	}
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return newError(CodeGoDaddy, "encode", "encoding request body failed", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return newError(CodeGoDaddy, "request", "building request failed", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("sso-key %s:%s", creds.APIKey, creds.APISecret))
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(req)
	if err != nil {
		return newError(CodeGoDaddy, "transport", "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return newError(CodeGoDaddy, "auth", "sso-key rejected", ErrAuth)
	case resp.StatusCode == http.StatusNotFound:
		return newError(CodeGoDaddy, "zone", "domain not found in account", ErrZoneNotFound)
	case resp.StatusCode >= 400:
		return newError(CodeGoDaddy, "api", fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return newError(CodeGoDaddy, "decode", "decoding response failed", err)
		}
	}
	return nil
}

func (a *godaddyAdapter) ListRecords(ctx context.Context, domain string, creds Credentials) ([]Record, error) {
	var native []godaddyRecord
	url := fmt.Sprintf("%s/domains/%s/records", a.BaseURL, domain)
	if err := a.do(ctx, creds, http.MethodGet, url, nil, &native); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(native))
	for _, r := range native {
		records = append(records, Record{
			Type:     r.Type,
			Name:     NormalizeName(r.Name, domain),
			Content:  r.Data,
			TTL:      r.TTL,
			Priority: r.Priority,
		})
	}
	return records, nil
}

func (a *godaddyAdapter) CreateRecord(ctx context.Context, domain string, rec Record, creds Credentials) error {
	// PATCH appends to the record set without replacing existing records.
	body := []godaddyRecord{{
		Type:     rec.Type,
		Name:     rec.Name,
		Data:     rec.Content,
		TTL:      rec.TTL,
		Priority: rec.Priority,
	}}
	url := fmt.Sprintf("%s/domains/%s/records", a.BaseURL, domain)
	return a.do(ctx, creds, http.MethodPatch, url, body, nil)
}
