// Realityctl manages Xray REALITY server configuration, per-user credentials
// and client onboarding artifacts (configs, vless:// links, QR codes).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "realityctl",
		Short: "Manage an Xray REALITY proxy server and its users",
		Long: `Realityctl is a local administration tool for a VLESS + REALITY proxy.

It supports:
  - Creating and updating the Xray server configuration
  - Managing per-user credentials with a paired metadata file
  - Running the proxy in a Docker container
  - Generating client configs, vless:// links and QR codes`,
		Version: version,
	}

	rootCmd.AddCommand(
		newConfigCmd(),
		newStartCmd(),
		newStopCmd(),
		newRestartCmd(),
		newLogsCmd(),
		newAddUserCmd(),
		newRemoveUserCmd(),
		newListUsersCmd(),
		newGetConfigCmd(),
		newVlessLinkCmd(),
		newQRCmd(),
		newGenKeysCmd(),
		newSettingsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
