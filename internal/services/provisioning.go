package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"domainly/internal/config"
	"domainly/internal/domainutil"
)

var (
	// ErrNotConfigured means the hosting credential is missing: an operator
	// problem, surfaced as "service unavailable" rather than a user failure.
	ErrNotConfigured = errors.New("hosting platform credential not configured")

	ErrInvalidDomainFormat = errors.New("invalid domain format")
)

// SiteInfo is the hosting platform's view of the serving site.
type SiteInfo struct {
	SiteID       string `json:"site_id"`
	Name         string `json:"name"`
	CustomDomain string `json:"custom_domain"`
	SSLStatus    string `json:"ssl_status"`
	DefaultHost  string `json:"default_host"`
}

// DNSInstruction is one record the user must publish at their registrar.
// Advisory output: nothing here is enforced, validation checks live DNS later.
type DNSInstruction struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Note    string `json:"note,omitempty"`
}

// ProvisioningClient attaches and detaches custom domains on the hosting
// platform's site and derives the DNS records the user must publish.
type ProvisioningClient struct {
	cfg    *config.Config
	client *http.Client
}

func NewProvisioningClient(cfg *config.Config) *ProvisioningClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ProvisioningClient{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

func (p *ProvisioningClient) do(ctx context.Context, method, path string, body, out any) error {
	if p.cfg.HostingAPIToken == "" {
		return ErrNotConfigured
	}
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, p.cfg.HostingAPIURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.HostingAPIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("hosting platform request failed: %w", err)
	}
	defer resp.Body.Close()

	// Removing an attachment that is already gone is a success.
	if method == http.MethodDelete && resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("hosting platform returned status %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding hosting platform response: %w", err)
		}
	}
	return nil
}

// AddCustomDomain attaches domain to the serving site. The format check runs
// before any network call.
func (p *ProvisioningClient) AddCustomDomain(ctx context.Context, domain string) (*SiteInfo, error) {
	domain = domainutil.Normalize(domain)
	if !domainutil.IsValid(domain) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDomainFormat, domain)
	}

	var info SiteInfo
	body := map[string]string{"custom_domain": domain}
	path := fmt.Sprintf("/sites/%s/custom-domain", p.cfg.HostingSiteID)
	if err := p.do(ctx, http.MethodPut, path, body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (p *ProvisioningClient) GetSiteInfo(ctx context.Context) (*SiteInfo, error) {
	var info SiteInfo
	path := fmt.Sprintf("/sites/%s", p.cfg.HostingSiteID)
	if err := p.do(ctx, http.MethodGet, path, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// RemoveCustomDomain detaches the current custom domain. Idempotent: removing
// an already-absent attachment succeeds.
func (p *ProvisioningClient) RemoveCustomDomain(ctx context.Context) error {
	path := fmt.Sprintf("/sites/%s/custom-domain", p.cfg.HostingSiteID)
	return p.do(ctx, http.MethodDelete, path, nil, nil)
}

// RequiredRecords derives the instruction set for a domain. Subdomains verify
// ownership via TXT and point a CNAME at the platform; root domains must also
// point A records at the load-balancer pool.
func (p *ProvisioningClient) RequiredRecords(domain, token string) []DNSInstruction {
	records := []DNSInstruction{{
		Type:    "TXT",
		Name:    "@",
		Content: fmt.Sprintf("%s=%s", p.cfg.TXTPrefix, token),
		Note:    "proves ownership of the domain",
	}}

	if domainutil.IsSubdomain(domain) {
		records = append(records, DNSInstruction{
			Type:    "CNAME",
			Name:    firstLabel(domain),
			Content: p.cfg.CNAMETarget,
			Note:    "routes the subdomain to our edge",
		})
		return records
	}

	for _, ip := range p.cfg.HostingIPs {
		records = append(records, DNSInstruction{
			Type:    "A",
			Name:    "@",
			Content: ip,
			Note:    "points the root domain at our hosting IP",
		})
	}
	records = append(records, DNSInstruction{
		Type:    "CNAME",
		Name:    "www",
		Content: p.cfg.CNAMETarget,
		Note:    "optional, serves the www variant",
	})
	return records
}

// RequiredARecord returns the primary hosting IP a root domain must resolve
// to. Empty when no pool is configured.
func (p *ProvisioningClient) RequiredARecord() string {
	if len(p.cfg.HostingIPs) == 0 {
		return ""
	}
	return p.cfg.HostingIPs[0]
}

func (p *ProvisioningClient) CNAMETarget() string { return p.cfg.CNAMETarget }

func firstLabel(domain string) string {
	for i := 0; i < len(domain); i++ {
		if domain[i] == '.' {
			return domain[:i]
		}
	}
	return domain
}
