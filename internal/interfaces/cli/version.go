package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCmd prints build information.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chemlogqc %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit:     %s\n", GitCommit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:      %s\n", BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "  go version: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

//Personal.AI order the ending
