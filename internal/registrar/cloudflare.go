package registrar

import (
	"context"
	"strings"

	"github.com/cloudflare/cloudflare-go"
)

type cloudflareAdapter struct{}

func init() {
	Register(CodeCloudflare, &cloudflareAdapter{})
}

func (a *cloudflareAdapter) api(creds Credentials) (*cloudflare.API, error) {
	if creds.APIKey == "" {
		return nil, newError(CodeCloudflare, "auth", "api token is required", ErrAuth)
	}
	api, err := cloudflare.NewWithAPIToken(creds.APIKey)
	if err != nil {
		return nil, newError(CodeCloudflare, "auth", "invalid api token", err)
	}
	return api, nil
}

func (a *cloudflareAdapter) zone(api *cloudflare.API, domain string, creds Credentials) (*cloudflare.ResourceContainer, error) {
	zone := creds.Zone
	if zone == "" {
		zone = domain
	}
	zoneID, err := api.ZoneIDByName(zone)
	if err != nil {
		if strings.Contains(err.Error(), "zone could not be found") {
			return nil, newError(CodeCloudflare, "zone", "zone "+zone+" not found in account", ErrZoneNotFound)
		}
		return nil, newError(CodeCloudflare, "zone", "zone lookup failed", err)
	}
	return cloudflare.ZoneIdentifier(zoneID), nil
}

func (a *cloudflareAdapter) ListRecords(ctx context.Context, domain string, creds Credentials) ([]Record, error) {
	api, err := a.api(creds)
	if err != nil {
		return nil, err
	}
	rc, err := a.zone(api, domain, creds)
	if err != nil {
		return nil, err
	}

	native, _, err := api.ListDNSRecords(ctx, rc, cloudflare.ListDNSRecordsParams{})
	if err != nil {
		return nil, newError(CodeCloudflare, "list", "listing dns records failed", err)
	}

	records := make([]Record, 0, len(native))
	for _, r := range native {
		rec := Record{
			ID:      r.ID,
			Type:    r.Type,
			Name:    NormalizeName(r.Name, domain),
			Content: r.Content,
			TTL:     r.TTL,
		}
		if r.Priority != nil {
			p := int(*r.Priority)
			rec.Priority = &p
		}
		records = append(records, rec)
	}
	return records, nil
}

func (a *cloudflareAdapter) CreateRecord(ctx context.Context, domain string, rec Record, creds Credentials) error {
	api, err := a.api(creds)
	if err != nil {
		return err
	}
	rc, err := a.zone(api, domain, creds)
	if err != nil {
		return err
	}

	params := cloudflare.CreateDNSRecordParams{
		Type:    rec.Type,
		Name:    DenormalizeName(rec.Name, domain),
		Content: rec.Content,
		TTL:     rec.TTL,
	}
	if rec.Priority != nil {
		p := uint16(*rec.Priority)
		params.Priority = &p
	}
	if _, err := api.CreateDNSRecord(ctx, rc, params); err != nil {
		return newError(CodeCloudflare, "create", "creating dns record failed", err)
	}
	return nil
}
