package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/statekit"
	"github.com/aretw0/statekit/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var banner bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of statekit",
		// Skips backend setup.
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			if banner {
				tui.PrintBanner(cmd.OutOrStdout(), strings.TrimSpace(statekit.Version))
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "statekit version %s\n", strings.TrimSpace(statekit.Version))
		},
	}
	cmd.Flags().BoolVar(&banner, "banner", false, "Print the banner")
	return cmd
}
