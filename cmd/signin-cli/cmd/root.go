package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "signin-cli",
		Short: "Account administration for the sign-in service",
		Long: `signin-cli manages the accounts the sign-in screen authenticates against.

Available commands:
  user create    Create an account in the configured auth backend
  check-email    Report whether an address is accepted by the sign-in form
  version        Print the CLI version

Use "signin-cli [command] --help" for more information about a specific command.`,
		SilenceUsage: true,
	}
	root.AddCommand(newUserCmd(), newCheckEmailCmd(), newVersionCmd())
	return root
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
