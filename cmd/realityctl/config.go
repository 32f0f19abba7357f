package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type configOptions struct {
	dest        string
	serverNames []string
	port        int
	save        string
}

func newConfigCmd() *cobra.Command {
	opts := &configOptions{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or update the server configuration",
		Long: `Create or update the Xray REALITY server configuration.

On first configuration a fresh X25519 key pair and one short id are
generated and the paired metadata file is written next to the config.
On an already configured file, only the given flags are updated and the
cached client-facing values stay in sync.

Examples:
  # First-time configuration
  realityctl config --dest example.com:443 --server-names example.com

  # Move the listener to another port later
  realityctl config --port 8443

  # Change the masqueraded destination
  realityctl config --dest cdn.example.org:443`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dest, "dest", "", "Destination to masquerade as (host:port)")
	cmd.Flags().StringSliceVar(&opts.serverNames, "server-names", nil, "Accepted TLS server names (first is primary)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "Listener port (default 443)")
	cmd.Flags().StringVar(&opts.save, "save", "", "Server config path (default from settings)")

	return cmd
}

func runConfig(cmd *cobra.Command, opts *configOptions) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	path := resolveConfigPath(opts.save, settings)

	s, _, err := openStore(path)
	if err != nil {
		return err
	}

	if !s.IsConfigured() {
		if opts.dest == "" || len(opts.serverNames) == 0 {
			return fmt.Errorf("--dest and --server-names are required for first-time configuration")
		}
		port := opts.port
		if port == 0 {
			port = settings.Server.Port
		}
		if err := s.Initialize(cmd.Context(), opts.dest, opts.serverNames, port); err != nil {
			return err
		}
	} else {
		if opts.dest != "" {
			if err := s.SetDestination(opts.dest); err != nil {
				return err
			}
		}
		if len(opts.serverNames) > 0 {
			if err := s.SetServerNames(opts.serverNames); err != nil {
				return err
			}
		}
		if opts.port != 0 {
			if err := s.SetPort(opts.port); err != nil {
				return err
			}
		}
	}

	if err := s.Save(path); err != nil {
		return err
	}

	fmt.Printf("Configuration saved to %s\n", path)
	return nil
}
