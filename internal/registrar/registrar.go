// Package registrar normalizes the DNS zone APIs of the supported registrars
// to a single record schema. Adapters are selected by registrar code through a
// lookup table; adding a registrar means adding one file that registers itself.
package registrar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

const (
	CodeCloudflare   = "cloudflare"
	CodeDigitalOcean = "digitalocean"
	CodeGoDaddy      = "godaddy"
	CodeNamecheap    = "namecheap"
)

// Record is the normalized DNS record shape. Name is "@" for the zone apex,
// otherwise the label(s) with the domain suffix stripped.
type Record struct {
	ID       string `json:"id,omitempty"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	TTL      int    `json:"ttl"`
	Priority *int   `json:"priority,omitempty"`
}

// Credentials are supplied per call and never persisted. Which fields matter
// depends on the registrar.
type Credentials struct {
	Registrar string `json:"registrar"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	Username  string `json:"username"`
	Zone      string `json:"zone"`
}

// Adapter is one registrar integration. Implementations never retry; retry
// policy belongs to the caller.
type Adapter interface {
	ListRecords(ctx context.Context, domain string, creds Credentials) ([]Record, error)
	CreateRecord(ctx context.Context, domain string, rec Record, creds Credentials) error
}

// Sentinel failure modes, wrapped inside *Error.
var (
	ErrAuth         = errors.New("authentication failed")
	ErrZoneNotFound = errors.New("zone not found")
	ErrUnsupported  = errors.New("operation not supported")
)

// Error carries the registrar code so failures stay attributable per-registrar.
type Error struct {
	Registrar string
	Op        string
	Message   string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Registrar, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Registrar, e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(registrar, op, message string, err error) *Error {
	return &Error{Registrar: registrar, Op: op, Message: message, Err: err}
}

var (
	mu       sync.RWMutex
	adapters = map[string]Adapter{}
)

// Register adds an adapter under code. Called from init() in each adapter file.
func Register(code string, a Adapter) {
	mu.Lock()
	defer mu.Unlock()
	adapters[code] = a
}

// ForCode returns the adapter for a registrar code.
func ForCode(code string) (Adapter, error) {
	mu.RLock()
	defer mu.RUnlock()
	a, ok := adapters[strings.ToLower(code)]
	if !ok {
		return nil, newError(code, "lookup", fmt.Sprintf("unsupported registrar code %q", code), nil)
	}
	return a, nil
}

// Codes lists the registered registrar codes, sorted.
func Codes() []string {
	mu.RLock()
	defer mu.RUnlock()
	codes := make([]string, 0, len(adapters))
	for c := range adapters {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// NormalizeName reduces a registrar-native record name to "@" for the bare
// domain or the label with the domain suffix stripped.
func NormalizeName(name, domain string) string {
	n := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
	d := strings.ToLower(domain)
	switch n {
	case "", "@", d:
		return "@"
	}
	return strings.TrimSuffix(n, "."+d)
}

// DenormalizeName is the inverse mapping used when writing records upstream
// for registrars whose APIs want fully qualified names.
func DenormalizeName(name, domain string) string {
	if name == "@" || name == "" {
		return domain
	}
	return name + "." + domain
}
