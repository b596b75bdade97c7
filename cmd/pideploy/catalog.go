// cmd/pideploy/catalog.go

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pideploy/internal/catalog"
)

var catalogProbeLinks bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the embedded component catalog",
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the embedded catalog's integrity",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load()
		if err != nil {
			return err
		}

		checker := catalog.NewChecker()
		violations := checker.Check(cat)
		if catalogProbeLinks {
			violations = append(violations, checker.ProbeLinks(cmd.Context(), cat)...)
		}

		if len(violations) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog OK (%d items)\n", len(cat.Items))
			return nil
		}
		for _, v := range violations {
			fmt.Fprintf(cmd.OutOrStdout(), "  %v\n", v)
		}
		return fmt.Errorf("catalog check failed with %d violation(s)", len(violations))
	},
}

func init() {
	catalogCheckCmd.Flags().BoolVar(&catalogProbeLinks, "probe-links", false, "Also verify every download link answers over HTTP")
	catalogCmd.AddCommand(catalogCheckCmd)
}
