package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [paths...]",
		Short: "Parse logs under the given paths and write datasets and the report",
		Long: "run walks every path, assigns files to the qm, tessellate and tesselate\n" +
			"modules, parses them and writes one file per dataset and output format\n" +
			"plus a JSON report description into the output directory.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			sum, err := runBatch(cmd.Context(), cliCtx.Config, cliCtx.Logger, args)
			if sum != nil && len(sum.Modules) > 0 {
				fmt.Fprint(cmd.OutOrStdout(), FormatTable(summaryHeaders, sum.tableRows()))
			}
			if err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("%d files written, report %s", len(sum.Outputs), sum.Report))
			if sum.Archived > 0 {
				PrintSuccess(cmd, fmt.Sprintf("%d objects archived for run %s", sum.Archived, sum.RunID))
			}
			return nil
		},
	}
}

//Personal.AI order the ending
