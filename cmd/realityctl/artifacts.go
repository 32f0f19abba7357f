package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/realityops/realityctl/pkg/artifact"
	"github.com/realityops/realityctl/pkg/qr"
	"github.com/spf13/cobra"
)

type artifactOptions struct {
	name       string
	configPath string
	server     string
	save       string
	link       bool
	showQR     bool
}

func newGetConfigCmd() *cobra.Command {
	opts := &artifactOptions{}

	cmd := &cobra.Command{
		Use:   "get-config",
		Short: "Generate a client configuration",
		Long: `Generate the importable JSON client configuration for a user.

The server address is taken from --server, or resolved from a public IP
echo service when omitted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGetConfig(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "User name (required)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Server config path (default from settings)")
	cmd.Flags().StringVar(&opts.server, "server", "", "Server address embedded in the client config")
	cmd.Flags().StringVar(&opts.save, "save", "", "Write the client config to a file instead of stdout")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runGetConfig(cmd *cobra.Command, opts *artifactOptions) error {
	builder, err := loadBuilder(opts.configPath)
	if err != nil {
		return err
	}

	addr := resolveServerAddress(cmd.Context(), opts.server)
	clientCfg, ok := builder.BuildClientConfig(opts.name, addr)
	if !ok {
		return fmt.Errorf("user %s not found or server info incomplete", opts.name)
	}

	data, err := json.MarshalIndent(clientCfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal client config: %w", err)
	}

	if opts.save != "" {
		if err := os.WriteFile(opts.save, data, 0600); err != nil {
			return fmt.Errorf("failed to write client config: %w", err)
		}
		fmt.Printf("Client config saved to %s\n", opts.save)
		return nil
	}

	fmt.Println(string(data))
	return nil
}

func newVlessLinkCmd() *cobra.Command {
	opts := &artifactOptions{}

	cmd := &cobra.Command{
		Use:   "vless-link",
		Short: "Generate a vless:// connection link",
		Long: `Generate the shareable vless:// link for a user.

Examples:
  realityctl vless-link --name alice --server 203.0.113.7
  realityctl vless-link --name alice --qr
  realityctl vless-link --name alice --save alice.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVlessLink(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "User name (required)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Server config path (default from settings)")
	cmd.Flags().StringVar(&opts.server, "server", "", "Server address embedded in the link")
	cmd.Flags().BoolVar(&opts.showQR, "qr", false, "Also render the link as a terminal QR code")
	cmd.Flags().StringVar(&opts.save, "save", "", "Write a QR PNG of the link to a file")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runVlessLink(cmd *cobra.Command, opts *artifactOptions) error {
	builder, err := loadBuilder(opts.configPath)
	if err != nil {
		return err
	}

	addr := resolveServerAddress(cmd.Context(), opts.server)
	link, ok := builder.BuildConnectionURI(opts.name, addr)
	if !ok {
		return fmt.Errorf("user %s not found or server info incomplete", opts.name)
	}

	if opts.showQR {
		qr.WriteTerminal(link, os.Stdout)
		fmt.Println()
	}
	if opts.save != "" {
		if err := qr.WritePNG(link, opts.save); err != nil {
			return err
		}
		fmt.Printf("QR code saved to %s\n", opts.save)
	}

	fmt.Println(link)
	return nil
}

func newQRCmd() *cobra.Command {
	opts := &artifactOptions{}

	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Render a client onboarding QR code",
		Long: `Render a QR code for a user, encoding either the full JSON client
config (default) or the vless:// link (--link).

Without --save the QR code is drawn in the terminal, followed by the
encoded payload.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQR(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "User name (required)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Server config path (default from settings)")
	cmd.Flags().StringVar(&opts.server, "server", "", "Server address embedded in the payload")
	cmd.Flags().BoolVar(&opts.link, "link", false, "Encode the vless:// link instead of the full config")
	cmd.Flags().StringVar(&opts.save, "save", "", "Write the QR code to a PNG file")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runQR(cmd *cobra.Command, opts *artifactOptions) error {
	builder, err := loadBuilder(opts.configPath)
	if err != nil {
		return err
	}

	mode := artifact.QRModeConfig
	if opts.link {
		mode = artifact.QRModeLink
	}

	addr := resolveServerAddress(cmd.Context(), opts.server)
	payload, ok := builder.BuildQRPayload(opts.name, addr, mode)
	if !ok {
		return fmt.Errorf("user %s not found or server info incomplete", opts.name)
	}

	if opts.save != "" {
		if err := qr.WritePNG(payload, opts.save); err != nil {
			return err
		}
		fmt.Printf("QR code saved to %s\n", opts.save)
		return nil
	}

	qr.WriteTerminal(payload, os.Stdout)
	fmt.Println()
	fmt.Println(payload)
	return nil
}

// loadBuilder loads the store behind the resolved config path and wraps it
// in a read-only artifact builder. The config must exist and be configured.
func loadBuilder(configPath string) (*artifact.Builder, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	path := resolveConfigPath(configPath, settings)

	s, found, err := openStore(path)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("server config %s not found, run `realityctl config` first", path)
	}
	return artifact.NewBuilder(s), nil
}
