package services

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domainly/internal/models"
)

// fakeResolver scripts DNS answers per name. A nil error with no entry means
// an empty answer.
type fakeResolver struct {
	txt      map[string][]string
	txtErr   map[string]error
	a        map[string][]net.IP
	aErr     map[string]error
	cname    map[string]string
	cnameErr map[string]error
}

func (f *fakeResolver) LookupTXT(ctx context.Context, name string) ([]string, error) {
	if err := f.txtErr[name]; err != nil {
		return nil, err
	}
	return f.txt[name], nil
}

func (f *fakeResolver) LookupA(ctx context.Context, name string) ([]net.IP, error) {
	if err := f.aErr[name]; err != nil {
		return nil, err
	}
	return f.a[name], nil
}

func (f *fakeResolver) LookupCNAME(ctx context.Context, name string) (string, error) {
	if err := f.cnameErr[name]; err != nil {
		return "", err
	}
	return f.cname[name], nil
}

func testDomain() *models.Domain {
	return &models.Domain{
		ID:                "d-1",
		DomainName:        "example-test.com",
		VerificationToken: "TOK123",
		RequiredARecord:   "203.0.113.10",
		RequiredCNAME:     "sites.domainly.app",
	}
}

func newEngine(r *fakeResolver) *ValidationEngine {
	return NewValidationEngine(r, "blo-verification", []string{"203.0.113.10"}, nil)
}

func TestValidateNoTXTRecord(t *testing.T) {
	r := &fakeResolver{
		txtErr: map[string]error{"example-test.com": errors.New("no such host")},
		a:      map[string][]net.IP{"example-test.com": {net.ParseIP("203.0.113.10")}},
		cname:  map[string]string{"www.example-test.com": "sites.domainly.app"},
	}
	res := newEngine(r).Validate(context.Background(), testDomain())

	assert.False(t, res.TXTValidated)
	assert.True(t, res.AValidated)
	assert.False(t, res.Valid())
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "TXT record not found. Expected: blo-verification=TOK123")
	assert.Equal(t, "no such host", res.Snapshot.TXTError)
}

func TestValidateAllMatching(t *testing.T) {
	r := &fakeResolver{
		txt:   map[string][]string{"example-test.com": {"some-other-record", "blo-verification=TOK123"}},
		a:     map[string][]net.IP{"example-test.com": {net.ParseIP("198.51.100.7"), net.ParseIP("203.0.113.10")}},
		cname: map[string]string{"www.example-test.com": "sites.domainly.app"},
	}
	res := newEngine(r).Validate(context.Background(), testDomain())

	assert.True(t, res.TXTValidated)
	assert.True(t, res.AValidated)
	assert.True(t, res.CNAMEValidated)
	assert.True(t, res.Valid())
	assert.Empty(t, res.Errors)
}

// CNAME is advisory: a timeout there never blocks activation, but the
// snapshot must record the failure for the audit log.
func TestValidateCNAMETimeoutStillValid(t *testing.T) {
	r := &fakeResolver{
		txt:      map[string][]string{"example-test.com": {"blo-verification=TOK123"}},
		a:        map[string][]net.IP{"example-test.com": {net.ParseIP("203.0.113.10")}},
		cnameErr: map[string]error{"www.example-test.com": context.DeadlineExceeded},
	}
	res := newEngine(r).Validate(context.Background(), testDomain())

	assert.True(t, res.Valid())
	assert.False(t, res.CNAMEValidated)
	assert.NotEmpty(t, res.Snapshot.CNAMEError)
}

func TestValidateCNAMEPointingAtDomainItself(t *testing.T) {
	r := &fakeResolver{
		txt:   map[string][]string{"example-test.com": {"blo-verification=TOK123"}},
		a:     map[string][]net.IP{"example-test.com": {net.ParseIP("203.0.113.10")}},
		cname: map[string]string{"www.example-test.com": "example-test.com"},
	}
	res := newEngine(r).Validate(context.Background(), testDomain())
	assert.True(t, res.CNAMEValidated)
}

func TestValidateWrongARecord(t *testing.T) {
	r := &fakeResolver{
		txt:   map[string][]string{"example-test.com": {"blo-verification=TOK123"}},
		a:     map[string][]net.IP{"example-test.com": {net.ParseIP("198.51.100.7")}},
		cname: map[string]string{"www.example-test.com": "sites.domainly.app"},
	}
	res := newEngine(r).Validate(context.Background(), testDomain())

	assert.True(t, res.TXTValidated)
	assert.False(t, res.AValidated)
	assert.False(t, res.Valid())

	assert.Contains(t, res.Errors, "A record doesn't point to our hosting IP: 203.0.113.10. Found: 198.51.100.7")
}

// A fully dead domain: every lookup fails, the pass still completes and
// reports each failure.
func TestValidateAllLookupsFail(t *testing.T) {
	boom := errors.New("NXDOMAIN")
	r := &fakeResolver{
		txtErr:   map[string]error{"example-test.com": boom},
		aErr:     map[string]error{"example-test.com": boom},
		cnameErr: map[string]error{"www.example-test.com": boom},
	}
	res := newEngine(r).Validate(context.Background(), testDomain())

	assert.False(t, res.Valid())
	assert.Len(t, res.Errors, 3)
	assert.Equal(t, "NXDOMAIN", res.Snapshot.TXTError)
	assert.Equal(t, "NXDOMAIN", res.Snapshot.AError)
	assert.Equal(t, "NXDOMAIN", res.Snapshot.CNAMEError)
}

// Any IP from the configured hosting pool passes the A check, not only the
// primary one recorded on the domain.
func TestValidateAnyPoolIPPasses(t *testing.T) {
	r := &fakeResolver{
		txt:   map[string][]string{"example-test.com": {"blo-verification=TOK123"}},
		a:     map[string][]net.IP{"example-test.com": {net.ParseIP("203.0.113.11")}},
		cname: map[string]string{"www.example-test.com": "sites.domainly.app"},
	}
	engine := NewValidationEngine(r, "blo-verification", []string{"203.0.113.10", "203.0.113.11"}, nil)
	res := engine.Validate(context.Background(), testDomain())

	assert.True(t, res.AValidated)
	assert.True(t, res.Valid())
}

// Multi-part TXT values are flattened with spaces before matching.
func TestValidateFlattenedTXT(t *testing.T) {
	r := &fakeResolver{
		txt:   map[string][]string{"example-test.com": {"blo-verification=TOK123 extra-part"}},
		a:     map[string][]net.IP{"example-test.com": {net.ParseIP("203.0.113.10")}},
		cname: map[string]string{"www.example-test.com": "sites.domainly.app"},
	}
	res := newEngine(r).Validate(context.Background(), testDomain())
	assert.True(t, res.TXTValidated)
}
