package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnoseMissingCredential(t *testing.T) {
	cfg := provisioningConfig("http://127.0.0.1:1")
	cfg.HostingAPIToken = ""
	s := NewDiagnosticService(cfg, NewProvisioningClient(cfg), &fakeResolver{})

	report := s.Diagnose(context.Background(), "")
	assert.Equal(t, VerdictCritical, report.Verdict)

	var checks []string
	for _, r := range report.Recommendations {
		checks = append(checks, r.Check)
	}
	assert.Contains(t, checks, "hosting_credential")
}

func TestDiagnoseHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"site_id":"site-1"}`))
	}))
	defer srv.Close()

	cfg := provisioningConfig(srv.URL)
	resolver := &fakeResolver{a: map[string][]net.IP{"example.com": {net.ParseIP("203.0.113.10")}}}
	s := NewDiagnosticService(cfg, NewProvisioningClient(cfg), resolver)

	report := s.Diagnose(context.Background(), "Example.com")
	assert.Equal(t, VerdictHealthy, report.Verdict)
	for _, r := range report.Recommendations {
		assert.Equal(t, SeveritySuccess, r.Severity, r.Check)
	}
}

func TestDiagnoseUnresolvableDomainIsWarning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"site_id":"site-1"}`))
	}))
	defer srv.Close()

	cfg := provisioningConfig(srv.URL)
	resolver := &fakeResolver{aErr: map[string]error{"brandnew.com": errors.New("no such host")}}
	s := NewDiagnosticService(cfg, NewProvisioningClient(cfg), resolver)

	report := s.Diagnose(context.Background(), "brandnew.com")
	assert.Equal(t, VerdictWarning, report.Verdict)
}

func TestDiagnoseBadDomainFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"site_id":"site-1"}`))
	}))
	defer srv.Close()

	cfg := provisioningConfig(srv.URL)
	s := NewDiagnosticService(cfg, NewProvisioningClient(cfg), &fakeResolver{})

	report := s.Diagnose(context.Background(), "not a domain")
	require.Equal(t, VerdictCritical, report.Verdict)
}
