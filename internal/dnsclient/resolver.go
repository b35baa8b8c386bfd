package dnsclient

import (
	"context"
	"net"
	"strings"
	"time"
)

// Resolver answers public DNS queries for arbitrary names. It checks what the
// world actually sees, not what a registrar's management API reports.
type Resolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
	LookupA(ctx context.Context, name string) ([]net.IP, error)
	LookupCNAME(ctx context.Context, name string) (string, error)
}

type Client struct {
	resolver *net.Resolver
	timeout  time.Duration
}

func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{resolver: &net.Resolver{}, timeout: timeout}
}

func (c *Client) LookupTXT(ctx context.Context, name string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.resolver.LookupTXT(ctx, name)
}

func (c *Client) LookupA(ctx context.Context, name string) ([]net.IP, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	addrs, err := c.resolver.LookupIPAddr(ctx, name)
	if err != nil {
		return nil, err
	}
	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		if v4 := a.IP.To4(); v4 != nil {
			ips = append(ips, v4)
		}
	}
	return ips, nil
}

func (c *Client) LookupCNAME(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target, err := c.resolver.LookupCNAME(ctx, name)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(target, "."), nil
}
