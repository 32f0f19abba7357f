package main

import (
	"fmt"

	"github.com/realityops/realityctl/pkg/store"
	"github.com/spf13/cobra"
)

type startOptions struct {
	configPath string
	detach     bool
	hostPort   int
}

func newStartCmd() *cobra.Command {
	opts := &startOptions{}

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the proxy container",
		Long: `Start the Xray proxy in a Docker container with the server config
mounted read-only at /etc/xray.

Examples:
  # Run in the foreground
  realityctl start

  # Run detached on a non-standard host port
  realityctl start --detach --host-port 8443`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Server config path (default from settings)")
	cmd.Flags().BoolVarP(&opts.detach, "detach", "d", false, "Run the container in the background")
	cmd.Flags().IntVar(&opts.hostPort, "host-port", 0, "Host port to publish (default from settings)")

	return cmd
}

func runStart(cmd *cobra.Command, opts *startOptions) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	path := resolveConfigPath(opts.configPath, settings)

	// Refuse to start an unconfigured or inconsistent document pair.
	s, found, err := openStore(path)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("server config %s not found, run `realityctl config` first", path)
	}
	if !s.IsConfigured() {
		return fmt.Errorf("server config %s: %w, run `realityctl config` first", path, store.ErrNotConfigured)
	}

	hostPort := opts.hostPort
	if hostPort == 0 {
		hostPort = settings.Docker.HostPort
	}

	mgr := newDockerManager(settings)
	if err := mgr.Start(cmd.Context(), path, opts.detach, hostPort); err != nil {
		return err
	}
	if opts.detach {
		fmt.Printf("Xray started in container %s\n", mgr.ContainerName)
	}
	return nil
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop and remove the proxy container",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			mgr := newDockerManager(settings)
			if err := mgr.Stop(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Container %s stopped\n", mgr.ContainerName)
			return nil
		},
	}
}

func newRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the proxy container",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			mgr := newDockerManager(settings)
			if err := mgr.Restart(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Container %s restarted\n", mgr.ContainerName)
			return nil
		},
	}
}

type logsOptions struct {
	tail int
}

func newLogsCmd() *cobra.Command {
	opts := &logsOptions{}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show proxy container logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			out, err := newDockerManager(settings).Logs(cmd.Context(), opts.tail)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.tail, "tail", 100, "Number of log lines to show")

	return cmd
}
