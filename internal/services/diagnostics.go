package services

import (
	"context"
	"fmt"

	"domainly/internal/config"
	"domainly/internal/dnsclient"
	"domainly/internal/domainutil"
)

const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeveritySuccess  = "success"

	VerdictHealthy  = "healthy"
	VerdictWarning  = "warning"
	VerdictCritical = "critical"
)

type Recommendation struct {
	Severity string `json:"severity"`
	Check    string `json:"check"`
	Message  string `json:"message"`
}

type DiagnosticReport struct {
	Verdict         string           `json:"verdict"`
	Recommendations []Recommendation `json:"recommendations"`
}

// DiagnosticService produces a read-only health report used by support flows.
// It never mutates domain state.
type DiagnosticService struct {
	cfg         *config.Config
	provisioner *ProvisioningClient
	resolver    dnsclient.Resolver
}

func NewDiagnosticService(cfg *config.Config, provisioner *ProvisioningClient, resolver dnsclient.Resolver) *DiagnosticService {
	return &DiagnosticService{cfg: cfg, provisioner: provisioner, resolver: resolver}
}

func (s *DiagnosticService) Diagnose(ctx context.Context, domain string) DiagnosticReport {
	var recs []Recommendation
	add := func(severity, check, format string, args ...any) {
		recs = append(recs, Recommendation{
			Severity: severity,
			Check:    check,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if s.cfg.HostingAPIToken == "" {
		add(SeverityCritical, "hosting_credential", "hosting platform API token is not configured")
	} else {
		add(SeveritySuccess, "hosting_credential", "hosting platform API token is present")

		if _, err := s.provisioner.GetSiteInfo(ctx); err != nil {
			add(SeverityCritical, "hosting_site", "hosting site is unreachable: %v", err)
		} else {
			add(SeveritySuccess, "hosting_site", "hosting site %s is reachable", s.cfg.HostingSiteID)
		}
	}

	if len(s.cfg.HostingIPs) == 0 {
		add(SeverityCritical, "hosting_ips", "no hosting IP pool configured; A-record validation can never pass")
	}

	if domain != "" {
		normalized := domainutil.Normalize(domain)
		if !domainutil.IsValid(normalized) {
			add(SeverityCritical, "domain_format", "%q is not a valid domain name", domain)
		} else {
			add(SeveritySuccess, "domain_format", "%s is a well-formed domain name", normalized)

			// Best effort: an unresolvable domain usually means it is brand
			// new or its nameservers are broken.
			if _, err := s.resolver.LookupA(ctx, normalized); err != nil {
				add(SeverityWarning, "dns_resolution", "%s does not resolve publicly yet: %v", normalized, err)
			} else {
				add(SeveritySuccess, "dns_resolution", "%s resolves publicly", normalized)
			}
		}
	}

	return DiagnosticReport{Verdict: verdict(recs), Recommendations: recs}
}

func verdict(recs []Recommendation) string {
	v := VerdictHealthy
	for _, r := range recs {
		switch r.Severity {
		case SeverityCritical:
			return VerdictCritical
		case SeverityWarning:
			v = VerdictWarning
		}
	}
	return v
}
