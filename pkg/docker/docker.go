// Package docker manages the Xray proxy container through the docker CLI.
// Every short-lived invocation runs with an explicit timeout so an
// unresponsive daemon surfaces as an error instead of a hang.
package docker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Defaults for the managed container.
const (
	DefaultContainerName = "xray-reality"
	DefaultImage         = "ghcr.io/xtls/xray-core:latest"
	DefaultTimeout       = 30 * time.Second
)

// Manager starts, stops and inspects the proxy container.
type Manager struct {
	ContainerName string
	Image         string
	// Timeout bounds each docker CLI invocation (default: DefaultTimeout).
	Timeout time.Duration
}

// NewManager returns a Manager with defaults filled in for empty fields.
func NewManager(containerName, image string) *Manager {
	if containerName == "" {
		containerName = DefaultContainerName
	}
	if image == "" {
		image = DefaultImage
	}
	return &Manager{ContainerName: containerName, Image: image, Timeout: DefaultTimeout}
}

// Available reports whether the docker CLI is usable.
func (m *Manager) Available(ctx context.Context) bool {
	_, err := m.run(ctx, "--version")
	return err == nil
}

// Start launches the proxy container with the config directory mounted at
// /etc/xray. An existing container with the same name is stopped and removed
// first. In detached mode the call returns once the container is up; in
// attached mode it blocks until the container exits.
func (m *Manager) Start(ctx context.Context, configPath string, detach bool, hostPort int) error {
	if !m.Available(ctx) {
		return fmt.Errorf("docker is not installed or not available")
	}

	if exists, err := m.containerExists(ctx); err != nil {
		return err
	} else if exists {
		if err := m.Stop(ctx); err != nil {
			return err
		}
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return fmt.Errorf("config file not found: %w", err)
	}

	args := m.runArgs(filepath.Dir(absPath), filepath.Base(absPath), detach, hostPort)

	if detach {
		if _, err := m.run(ctx, args...); err != nil {
			return fmt.Errorf("failed to start container: %w", err)
		}
		return nil
	}

	// Attached run: no timeout, container lives as long as the command.
	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("container exited with error: %w", err)
	}
	return nil
}

// runArgs builds the `docker run` argument list. Split out for testing.
func (m *Manager) runArgs(configDir, configFile string, detach bool, hostPort int) []string {
	if hostPort <= 0 {
		hostPort = 443
	}
	args := []string{
		"run",
		"--name", m.ContainerName,
		"-v", configDir + ":/etc/xray",
		"-p", fmt.Sprintf("%d:443/tcp", hostPort),
		"--restart", "unless-stopped",
	}
	if detach {
		args = append(args, "-d")
	}
	return append(args, m.Image, "run", "-c", "/etc/xray/"+configFile)
}

// Stop stops and removes the proxy container. A missing container is a
// normal outcome, not an error.
func (m *Manager) Stop(ctx context.Context) error {
	if !m.Available(ctx) {
		return fmt.Errorf("docker is not installed or not available")
	}

	exists, err := m.containerExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	running, err := m.containerRunning(ctx)
	if err != nil {
		return err
	}
	if running {
		if _, err := m.run(ctx, "stop", m.ContainerName); err != nil {
			return fmt.Errorf("failed to stop container: %w", err)
		}
	}
	if _, err := m.run(ctx, "rm", m.ContainerName); err != nil {
		return fmt.Errorf("failed to remove container: %w", err)
	}
	return nil
}

// Restart restarts a previously started container in place.
func (m *Manager) Restart(ctx context.Context) error {
	if !m.Available(ctx) {
		return fmt.Errorf("docker is not installed or not available")
	}
	exists, err := m.containerExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("container %s does not exist, nothing to restart", m.ContainerName)
	}
	if _, err := m.run(ctx, "restart", m.ContainerName); err != nil {
		return fmt.Errorf("failed to restart container: %w", err)
	}
	return nil
}

// Logs returns the last tail lines of the container log.
func (m *Manager) Logs(ctx context.Context, tail int) (string, error) {
	if !m.Available(ctx) {
		return "", fmt.Errorf("docker is not installed or not available")
	}
	exists, err := m.containerExists(ctx)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("container %s does not exist", m.ContainerName)
	}
	if tail <= 0 {
		tail = 100
	}
	out, err := m.run(ctx, "logs", "--tail="+strconv.Itoa(tail), m.ContainerName)
	if err != nil {
		return "", fmt.Errorf("failed to get container logs: %w", err)
	}
	return out, nil
}

func (m *Manager) containerExists(ctx context.Context) (bool, error) {
	out, err := m.run(ctx, "ps", "-a", "--format", "{{.Names}}")
	if err != nil {
		return false, fmt.Errorf("failed to list containers: %w", err)
	}
	return slices.Contains(strings.Fields(out), m.ContainerName), nil
}

func (m *Manager) containerRunning(ctx context.Context) (bool, error) {
	out, err := m.run(ctx, "ps", "--format", "{{.Names}}")
	if err != nil {
		return false, fmt.Errorf("failed to list running containers: %w", err)
	}
	return slices.Contains(strings.Fields(out), m.ContainerName), nil
}

func (m *Manager) run(ctx context.Context, args ...string) (string, error) {
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "docker", args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("docker %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}
