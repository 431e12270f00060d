package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// NewCacheCmd creates the cache command group.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the parse-result cache",
	}
	cmd.AddCommand(newCachePurgeCmd())
	return cmd
}

func newCachePurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge [module]",
		Short: "Delete cached parse results, for one module or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			prefix := "parse:"
			if len(args) == 1 {
				if !knownModule(args[0]) {
					return errors.InvalidParam("unknown module").WithDetail("module=" + args[0])
				}
				prefix += args[0] + ":"
			}

			cache, closeCache, err := connectCache(cliCtx.Config, cliCtx.Logger)
			if err != nil {
				return err
			}
			defer closeCache()

			n, err := cache.Purge(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("%d cached results removed", n))
			return nil
		},
	}
}

func knownModule(name string) bool {
	for _, p := range parsers() {
		if p.Name() == name {
			return true
		}
	}
	return false
}

// NewArchiveCmd creates the archive command group.
func NewArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect archived runs in object storage",
	}
	cmd.AddCommand(newArchiveListCmd())
	return cmd
}

func newArchiveListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <run-id>",
		Short: "List the objects archived for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			runID, err := uuid.Parse(args[0])
			if err != nil {
				return errors.InvalidParam("run id is not a UUID").WithDetail("run_id=" + args[0])
			}

			arch, err := newArchiver(cmd.Context(), cliCtx.Config, cliCtx.Logger)
			if err != nil {
				return err
			}
			keys, err := arch.ListRun(cmd.Context(), runID)
			if err != nil {
				return err
			}
			rows := make([][]string, len(keys))
			for i, k := range keys {
				rows[i] = []string{k}
			}
			fmt.Fprint(cmd.OutOrStdout(), FormatTable([]string{"OBJECT"}, rows))
			PrintSuccess(cmd, fmt.Sprintf("%d objects archived for run %s", len(keys), runID))
			return nil
		},
	}
}

//Personal.AI order the ending
