package registrar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const namecheapHostsXML = `<?xml version="1.0" encoding="utf-8"?>
<ApiResponse Status="OK" xmlns="http://api.namecheap.com/xml.response">
  <Errors />
  <CommandResponse Type="namecheap.domains.dns.getHosts">
    <DomainDNSGetHostsResult Domain="example.com" IsUsingOurDNS="true">
      <host HostId="12" Name="@" Type="A" Address="203.0.113.10" MXPref="10" TTL="1800" />
      <host HostId="13" Name="www" Type="CNAME" Address="sites.domainly.app." MXPref="10" TTL="1800" />
      <host HostId="14" Name="@" Type="MX" Address="mail.example.com." MXPref="20" TTL="1800" />
    </DomainDNSGetHostsResult>
  </CommandResponse>
</ApiResponse>`

func TestNamecheapListRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "namecheap.domains.dns.getHosts", q.Get("Command"))
		assert.Equal(t, "example", q.Get("SLD"))
		assert.Equal(t, "com", q.Get("TLD"))
		assert.Equal(t, "nc-user", q.Get("ApiUser"))
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(namecheapHostsXML))
	}))
	defer srv.Close()

	a := &namecheapAdapter{BaseURL: srv.URL, Client: srv.Client()}
	records, err := a.ListRecords(context.Background(), "example.com",
		Credentials{APIKey: "nc-key", Username: "nc-user"})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "@", records[0].Name)
	assert.Equal(t, "A", records[0].Type)
	assert.Equal(t, "203.0.113.10", records[0].Content)
	assert.Equal(t, 1800, records[0].TTL)

	assert.Equal(t, "www", records[1].Name)
	assert.Nil(t, records[1].Priority)

	require.NotNil(t, records[2].Priority)
	assert.Equal(t, 20, *records[2].Priority)
}

func TestNamecheapErrorStatus(t *testing.T) {
	body := `<?xml version="1.0" encoding="utf-8"?>
<ApiResponse Status="ERROR" xmlns="http://api.namecheap.com/xml.response">
  <Errors><Error Number="2030166">Domain is invalid</Error></Errors>
  <CommandResponse />
</ApiResponse>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	a := &namecheapAdapter{BaseURL: srv.URL, Client: srv.Client()}
	_, err := a.ListRecords(context.Background(), "example.com",
		Credentials{APIKey: "nc-key", Username: "nc-user"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrZoneNotFound))
	assert.Contains(t, err.Error(), "Domain is invalid")
}

func TestNamecheapCreateUnsupported(t *testing.T) {
	a := &namecheapAdapter{BaseURL: "http://127.0.0.1:1", Client: http.DefaultClient}
	err := a.CreateRecord(context.Background(), "example.com", Record{Type: "TXT"}, Credentials{})
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestSplitDomain(t *testing.T) {
	sld, tld, err := splitDomain("example.com")
	require.NoError(t, err)
	assert.Equal(t, "example", sld)
	assert.Equal(t, "com", tld)

	sld, tld, err = splitDomain("example.co.uk")
	require.NoError(t, err)
	assert.Equal(t, "example", sld)
	assert.Equal(t, "co.uk", tld)

	_, _, err = splitDomain("nodots")
	assert.Error(t, err)
}
