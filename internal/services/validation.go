package services

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"golang.org/x/sync/errgroup"

	"domainly/internal/dnsclient"
	"domainly/internal/models"
)

// Snapshot is the raw DNS state observed during one pass, kept for the audit
// log. Check-level failures land in the *Error fields, not in Go errors.
type Snapshot struct {
	TXT        []string `json:"txt"`
	TXTError   string   `json:"txt_error,omitempty"`
	A          []string `json:"a"`
	AError     string   `json:"a_error,omitempty"`
	CNAME      string   `json:"cname"`
	CNAMEError string   `json:"cname_error,omitempty"`
}

// ValidationResult is the outcome of one validation pass. It carries no
// persisted state; applying it to the Domain row is the store's job.
type ValidationResult struct {
	DomainName     string
	TXTValidated   bool
	AValidated     bool
	CNAMEValidated bool
	Errors         []string
	Snapshot       Snapshot
}

// Valid reports whether the pass allows activation. CNAME is advisory and
// never gates activation.
func (r ValidationResult) Valid() bool {
	return r.TXTValidated && r.AValidated
}

// ValidationEngine runs validation passes. It is a pure function of live DNS
// state plus the domain's expected values: no persistence, no retries.
type ValidationEngine struct {
	resolver   dnsclient.Resolver
	txtPrefix  string
	hostingIPs []string
	logger     *slog.Logger
}

// NewValidationEngine builds an engine. hostingIPs is the platform's
// load-balancer pool; an A record matching any of them passes.
func NewValidationEngine(resolver dnsclient.Resolver, txtPrefix string, hostingIPs []string, logger *slog.Logger) *ValidationEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidationEngine{resolver: resolver, txtPrefix: txtPrefix, hostingIPs: hostingIPs, logger: logger}
}

// Validate resolves TXT, A and CNAME state for the domain and compares it
// against the expected values. The three lookups run concurrently; a failure
// on one record type never aborts the others.
func (e *ValidationEngine) Validate(ctx context.Context, d *models.Domain) ValidationResult {
	res := ValidationResult{DomainName: d.DomainName}

	var (
		txtRecords []string
		txtErr     error
		ips        []net.IP
		aErr       error
		cname      string
		cnameErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txtRecords, txtErr = e.resolver.LookupTXT(gctx, d.DomainName)
		return nil
	})
	g.Go(func() error {
		ips, aErr = e.resolver.LookupA(gctx, d.DomainName)
		return nil
	})
	g.Go(func() error {
		cname, cnameErr = e.resolver.LookupCNAME(gctx, "www."+d.DomainName)
		return nil
	})
	_ = g.Wait()

	expectedTXT := fmt.Sprintf("%s=%s", e.txtPrefix, d.VerificationToken)
	res.Snapshot.TXT = txtRecords
	if txtErr != nil {
		res.Snapshot.TXTError = txtErr.Error()
		res.Errors = append(res.Errors, fmt.Sprintf("TXT record not found. Expected: %s", expectedTXT))
	} else if strings.Contains(strings.Join(txtRecords, " "), expectedTXT) {
		res.TXTValidated = true
	} else {
		res.Errors = append(res.Errors, fmt.Sprintf("TXT record doesn't contain the verification token. Expected: %s", expectedTXT))
	}

	for _, ip := range ips {
		res.Snapshot.A = append(res.Snapshot.A, ip.String())
	}
	expectedIPs := e.hostingIPs
	if len(expectedIPs) == 0 {
		expectedIPs = []string{d.RequiredARecord}
	}
	if aErr != nil {
		res.Snapshot.AError = aErr.Error()
		res.Errors = append(res.Errors, fmt.Sprintf("A record not found. Expected: %s", strings.Join(expectedIPs, ", ")))
	} else if containsAnyIP(ips, expectedIPs) {
		res.AValidated = true
	} else {
		res.Errors = append(res.Errors, fmt.Sprintf("A record doesn't point to our hosting IP: %s. Found: %s",
			strings.Join(expectedIPs, ", "), strings.Join(res.Snapshot.A, ", ")))
	}

	res.Snapshot.CNAME = cname
	switch {
	case cnameErr != nil:
		res.Snapshot.CNAMEError = cnameErr.Error()
		res.Errors = append(res.Errors, fmt.Sprintf("CNAME for www.%s could not be resolved (optional)", d.DomainName))
	case cname == d.RequiredCNAME || cname == d.DomainName:
		res.CNAMEValidated = true
	default:
		res.Errors = append(res.Errors, fmt.Sprintf("CNAME for www.%s points to %s, expected %s (optional)",
			d.DomainName, cname, d.RequiredCNAME))
	}

	e.logger.Info("validation pass finished",
		"domain", d.DomainName,
		"txt", res.TXTValidated,
		"a", res.AValidated,
		"cname", res.CNAMEValidated,
	)
	return res
}

func containsAnyIP(ips []net.IP, wanted []string) bool {
	for _, want := range wanted {
		target := net.ParseIP(want)
		if target == nil {
			continue
		}
		for _, ip := range ips {
			if ip.Equal(target) {
				return true
			}
		}
	}
	return false
}
