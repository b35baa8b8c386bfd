package registrar

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// namecheapAdapter speaks the legacy Namecheap API: XML responses addressed
// entirely through query-string parameters.
type namecheapAdapter struct {
	BaseURL string
	Client  *http.Client
}

func init() {
	Register(CodeNamecheap, &namecheapAdapter{
		BaseURL: "https://api.namecheap.com/xml.response",
		Client:  &http.Client{Timeout: 10 * time.Second},
	})
}

type namecheapResponse struct {
	XMLName xml.Name `xml:"ApiResponse"`
	Status  string   `xml:"Status,attr"`
	Errors  struct {
		Error []struct {
			Number  string `xml:"Number,attr"`
			Message string `xml:",chardata"`
		} `xml:"Error"`
	} `xml:"Errors"`
	CommandResponse struct {
		Hosts struct {
			Host []struct {
				HostID string `xml:"HostId,attr"`
				Name   string `xml:"Name,attr"`
				Type   string `xml:"Type,attr"`
				Addr   string `xml:"Address,attr"`
				MXPref string `xml:"MXPref,attr"`
				TTL    string `xml:"TTL,attr"`
			} `xml:"host"`
		} `xml:"DomainDNSGetHostsResult"`
	} `xml:"CommandResponse"`
}

// splitDomain breaks "example.com" into SLD "example" and TLD "com". The API
// addresses zones by those two parts, not the FQDN.
func splitDomain(domain string) (sld, tld string, err error) {
	i := strings.Index(domain, ".")
	if i <= 0 || i == len(domain)-1 {
		return "", "", fmt.Errorf("cannot split %q into SLD and TLD", domain)
	}
	return domain[:i], domain[i+1:], nil
}

func (a *namecheapAdapter) ListRecords(ctx context.Context, domain string, creds Credentials) ([]Record, error) {
	if creds.APIKey == "" || creds.Username == "" {
		return nil, newError(CodeNamecheap, "auth", "api key and username are required", ErrAuth)
	}
	sld, tld, err := splitDomain(domain)
	if err != nil {
		return nil, newError(CodeNamecheap, "list", "invalid domain", err)
	}

	q := url.Values{}
	q.Set("ApiUser", creds.Username)
	q.Set("UserName", creds.Username)
	q.Set("ApiKey", creds.APIKey)
	q.Set("Command", "namecheap.domains.dns.getHosts")
	q.Set("SLD", sld)
	q.Set("TLD", tld)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, newError(CodeNamecheap, "request", "building request failed", err)
	}
	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, newError(CodeNamecheap, "transport", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(CodeNamecheap, "read", "reading response failed", err)
	}

	var parsed namecheapResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, newError(CodeNamecheap, "decode", "decoding xml response failed", err)
	}
	if !strings.EqualFold(parsed.Status, "OK") {
		msg := "api returned error status"
		var cause error
		if len(parsed.Errors.Error) > 0 {
			e := parsed.Errors.Error[0]
			msg = strings.TrimSpace(e.Message)
			// 2019166 / 2030166 are the "domain not found / not associated
			// with your account" family; 1011102 is bad API key.
			switch {
			case strings.HasSuffix(e.Number, "166"):
				cause = ErrZoneNotFound
			case strings.HasPrefix(e.Number, "10111"):
				cause = ErrAuth
			}
		}
		return nil, newError(CodeNamecheap, "list", msg, cause)
	}

	hosts := parsed.CommandResponse.Hosts.Host
	records := make([]Record, 0, len(hosts))
	for _, h := range hosts {
		rec := Record{
			ID:      h.HostID,
			Type:    h.Type,
			Name:    NormalizeName(h.Name, domain),
			Content: h.Addr,
		}
		if ttl, err := strconv.Atoi(h.TTL); err == nil {
			rec.TTL = ttl
		}
		if strings.EqualFold(h.Type, "MX") {
			if pref, err := strconv.Atoi(h.MXPref); err == nil {
				rec.Priority = &pref
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// CreateRecord is not supported: the only write the legacy API offers is
// setHosts, which replaces the entire zone and would drop records we never
// saw. Callers get instructions to publish the record manually instead.
func (a *namecheapAdapter) CreateRecord(ctx context.Context, domain string, rec Record, creds Credentials) error {
	return newError(CodeNamecheap, "create", "record writes require replacing the whole zone", ErrUnsupported)
}
