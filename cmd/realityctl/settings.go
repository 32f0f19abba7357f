package main

import (
	"fmt"

	"github.com/realityops/realityctl/pkg/config"
	"github.com/spf13/cobra"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage realityctl settings",
		Long:  `Manage the realityctl settings file.`,
	}

	cmd.AddCommand(
		newSettingsInitCmd(),
		newSettingsShowCmd(),
	)

	return cmd
}

type settingsInitOptions struct {
	output string
}

func newSettingsInitCmd() *cobra.Command {
	opts := &settingsInitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a settings file",
		Long: `Create a new settings file with default values.

The settings file uses YAML format and configures the tool itself:
the default server config path, the container name and image, and the
published host port.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsInit(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output path (default: ~/.realityctl/config.yaml)")

	return cmd
}

func runSettingsInit(opts *settingsInitOptions) error {
	path := opts.output
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}

	fmt.Printf("Settings file created: %s\n", path)
	return nil
}

func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show example settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("# realityctl settings")
			fmt.Println("#")
			fmt.Println("# Save this to ~/.realityctl/config.yaml")
			fmt.Println()
			fmt.Println(config.ExampleConfig())
			return nil
		},
	}
}
