// Package publicip resolves the host's public IP address, used when an
// artifact command is run without an explicit --server address.
package publicip

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultEndpoints are tried in order; the first usable answer wins.
var DefaultEndpoints = []string{
	"https://api.ipify.org",
	"https://ifconfig.me/ip",
}

// DefaultTimeout bounds each individual lookup request.
const DefaultTimeout = 10 * time.Second

// Resolver queries plain-text IP echo services.
type Resolver struct {
	// Endpoints overrides DefaultEndpoints when non-empty.
	Endpoints []string
	// Timeout bounds each request (default: DefaultTimeout).
	Timeout time.Duration
	// Client overrides the HTTP client (default: http.DefaultClient).
	Client *http.Client
}

// Resolve returns the public IP address, trying each endpoint in turn. All
// endpoints failing is reported as an error; the caller decides whether to
// proceed without an address.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	endpoints := r.Endpoints
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	var lastErr error
	for _, endpoint := range endpoints {
		ip, err := fetch(ctx, client, endpoint, timeout)
		if err != nil {
			lastErr = err
			continue
		}
		return ip, nil
	}
	return "", fmt.Errorf("failed to resolve public IP: %w", lastErr)
}

func fetch(ctx context.Context, client *http.Client, endpoint string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", err
	}
	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("%s returned an invalid address %q", endpoint, ip)
	}
	return ip, nil
}
