package registrar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// digitaloceanAdapter speaks the DigitalOcean v2 domains API: plain JSON REST
// with a bearer token. The adapter itself is stateless; credentials travel per
// call.
type digitaloceanAdapter struct {
	BaseURL string
	Client  *http.Client
}

func init() {
	Register(CodeDigitalOcean, &digitaloceanAdapter{
		BaseURL: "https://api.digitalocean.com/v2",
		Client:  &http.Client{Timeout: 10 * time.Second},
	})
}

type doRecord struct {
	ID       int64  `json:"id,omitempty"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Data     string `json:"data"`
	TTL      int    `json:"ttl,omitempty"`
	Priority *int   `json:"priority,omitempty"`
}

func (a *digitaloceanAdapter) do(ctx context.Context, token, method, url string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return newError(CodeDigitalOcean, "encode", "encoding request body failed", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return newError(CodeDigitalOcean, "request", "building request failed", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(req)
	if err != nil {
		return newError(CodeDigitalOcean, "transport", "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return newError(CodeDigitalOcean, "auth", "token rejected", ErrAuth)
	case resp.StatusCode == http.StatusNotFound:
		return newError(CodeDigitalOcean, "zone", "domain not found in account", ErrZoneNotFound)
	case resp.StatusCode >= 400:
		return newError(CodeDigitalOcean, "api", fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return newError(CodeDigitalOcean, "decode", "decoding response failed", err)
		}
	}
	return nil
}

func (a *digitaloceanAdapter) ListRecords(ctx context.Context, domain string, creds Credentials) ([]Record, error) {
	if creds.APIKey == "" {
		return nil, newError(CodeDigitalOcean, "auth", "api token is required", ErrAuth)
	}
	var payload struct {
		DomainRecords []doRecord `json:"domain_records"`
	}
	url := fmt.Sprintf("%s/domains/%s/records?per_page=200", a.BaseURL, domain)
	if err := a.do(ctx, creds.APIKey, http.MethodGet, url, nil, &payload); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(payload.DomainRecords))
	for _, r := range payload.DomainRecords {
		records = append(records, Record{
			ID:       fmt.Sprint(r.ID),
			Type:     r.Type,
			Name:     NormalizeName(r.Name, domain),
			Content:  r.Data,
			TTL:      r.TTL,
			Priority: r.Priority,
		})
	}
	return records, nil
}

func (a *digitaloceanAdapter) CreateRecord(ctx context.Context, domain string, rec Record, creds Credentials) error {
	if creds.APIKey == "" {
		return newError(CodeDigitalOcean, "auth", "api token is required", ErrAuth)
	}
	body := doRecord{
		Type:     rec.Type,
		Name:     rec.Name,
		Data:     rec.Content,
		TTL:      rec.TTL,
		Priority: rec.Priority,
	}
	url := fmt.Sprintf("%s/domains/%s/records", a.BaseURL, domain)
	return a.do(ctx, creds.APIKey, http.MethodPost, url, body, nil)
}
