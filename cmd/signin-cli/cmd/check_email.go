package cmd

import (
	"fmt"

	"github.com/nfrund/signin/internal/signin"
	"github.com/spf13/cobra"
)

func newCheckEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-email <email>",
		Short: "Report whether an address enables the sign-in and recovery buttons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !signin.EmailValid(args[0]) {
				return fmt.Errorf("%q is not a valid email address", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%q is a valid email address\n", args[0])
			return nil
		},
	}
}
