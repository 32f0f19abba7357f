package main

import (
	"fmt"

	"github.com/realityops/realityctl/pkg/keygen"
	"github.com/spf13/cobra"
)

type genKeysOptions struct {
	saveToConfig string
	restart      bool
}

func newGenKeysCmd() *cobra.Command {
	opts := &genKeysOptions{}

	cmd := &cobra.Command{
		Use:   "gen-keys",
		Short: "Generate a REALITY key pair",
		Long: `Generate a fresh X25519 key pair and short id.

Key generation first tries the proxy image's own x25519 subcommand via
Docker so the output matches the deployed proxy exactly, and falls back
to a local implementation when the container runtime is unavailable.

With --save-to-config the new keys replace the stored ones: the private
key and the primary short id in the server config, the public key and
short id set in the metadata cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenKeys(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.saveToConfig, "save-to-config", "", "Rotate the keys stored in this server config")
	cmd.Flags().BoolVar(&opts.restart, "restart", false, "Restart the proxy container afterwards")

	return cmd
}

func runGenKeys(cmd *cobra.Command, opts *genKeysOptions) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	gen := keygen.XrayKeyGenerator{Image: settings.Docker.Image}
	priv, pub, err := gen.Generate(cmd.Context())
	if err != nil {
		return err
	}
	shortID, err := keygen.RandomShortIDs{}.Generate(keygen.DefaultShortIDLength)
	if err != nil {
		return err
	}

	fmt.Printf("Private key: %s\n", priv)
	fmt.Printf("Public key: %s\n", pub)
	fmt.Printf("Short id: %s\n", shortID)

	if opts.saveToConfig == "" {
		return nil
	}

	s, found, err := openStore(opts.saveToConfig)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("server config %s not found", opts.saveToConfig)
	}
	if err := s.RotateKeys(priv, pub, shortID); err != nil {
		return err
	}
	if err := s.Save(opts.saveToConfig); err != nil {
		return err
	}
	fmt.Printf("Keys rotated in %s\n", opts.saveToConfig)

	maybeRestart(cmd.Context(), opts.restart, settings)
	return nil
}
