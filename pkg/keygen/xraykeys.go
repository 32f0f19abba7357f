package keygen

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultToolTimeout bounds a single external key-generation run.
const DefaultToolTimeout = 30 * time.Second

// XrayKeyGenerator derives key pairs by running the proxy image's own
// `x25519` subcommand through the container runtime, falling back to the
// local generator when the runtime or image is unavailable.
type XrayKeyGenerator struct {
	// Image is the proxy container image to run.
	Image string
	// Timeout bounds the subprocess run (default: DefaultToolTimeout).
	Timeout time.Duration
	// Fallback is used when the external tool fails (default: local X25519).
	Fallback KeyPairGenerator
}

// Generate runs the external tool and parses its "Private key:"/"Public key:"
// output. Any failure switches to the fallback generator.
func (g XrayKeyGenerator) Generate(ctx context.Context) (string, string, error) {
	priv, pub, err := g.generateExternal(ctx)
	if err == nil {
		return priv, pub, nil
	}

	fallback := g.Fallback
	if fallback == nil {
		fallback = X25519Generator{}
	}
	priv, pub, ferr := fallback.Generate(ctx)
	if ferr != nil {
		return "", "", fmt.Errorf("external key generation failed (%v) and fallback failed: %w", err, ferr)
	}
	return priv, pub, nil
}

func (g XrayKeyGenerator) generateExternal(ctx context.Context) (string, string, error) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "docker", "run", "--rm", g.Image, "x25519")
	out, err := cmd.Output()
	if err != nil {
		return "", "", fmt.Errorf("failed to run key generator: %w", err)
	}

	var priv, pub string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		switch {
		case strings.HasPrefix(line, "Private key: "):
			priv = strings.TrimSpace(strings.TrimPrefix(line, "Private key: "))
		case strings.HasPrefix(line, "Public key: "):
			pub = strings.TrimSpace(strings.TrimPrefix(line, "Public key: "))
		}
	}
	if priv == "" || pub == "" {
		return "", "", fmt.Errorf("unexpected key generator output: %q", string(out))
	}
	return priv, pub, nil
}
