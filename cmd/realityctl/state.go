package main

import (
	"context"
	"fmt"

	"github.com/realityops/realityctl/pkg/config"
	"github.com/realityops/realityctl/pkg/docker"
	"github.com/realityops/realityctl/pkg/keygen"
	"github.com/realityops/realityctl/pkg/publicip"
	"github.com/realityops/realityctl/pkg/store"
)

// loadSettings reads the tool settings, falling back to defaults when the
// settings file does not exist.
func loadSettings() (*config.Config, error) {
	cfg, err := config.LoadOrDefault("")
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return cfg, nil
}

// resolveConfigPath applies the settings default when no --config was given.
func resolveConfigPath(flagValue string, settings *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	return settings.Server.ConfigPath
}

// openStore loads the paired documents from configPath. found is false when
// the server config does not exist yet; the store then holds defaults.
func openStore(configPath string) (*store.Store, bool, error) {
	s := store.New(keygen.Default())
	found, err := s.Load(configPath)
	if err != nil {
		return nil, found, err
	}
	return s, found, nil
}

// newDockerManager builds the container manager from settings.
func newDockerManager(settings *config.Config) *docker.Manager {
	return docker.NewManager(settings.Docker.ContainerName, settings.Docker.Image)
}

// resolveServerAddress returns the explicit address when given, otherwise
// looks up the public IP. Resolution failure is soft: the user is told to
// pass --server and an empty address is returned.
func resolveServerAddress(ctx context.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	resolver := &publicip.Resolver{}
	addr, err := resolver.Resolve(ctx)
	if err != nil {
		fmt.Printf("Warning: could not determine the public IP address (%v); pass --server to set it manually\n", err)
		return ""
	}
	fmt.Printf("Resolved public server address: %s\n", addr)
	return addr
}

// maybeRestart restarts the proxy container when requested, reporting but
// not failing on restart errors so the completed state change stands.
func maybeRestart(ctx context.Context, restart bool, settings *config.Config) {
	if !restart {
		return
	}
	if err := newDockerManager(settings).Restart(ctx); err != nil {
		fmt.Printf("Warning: failed to restart the proxy container: %v\n", err)
	} else {
		fmt.Println("Proxy container restarted")
	}
}
