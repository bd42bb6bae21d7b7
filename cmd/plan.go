package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mhoffmann/hiersearch/internal/config"
	"github.com/mhoffmann/hiersearch/internal/strategy"
)

var planConfigPath string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the macro-iteration schedule for a configuration",
	Long: `Builds the search schedule from a configuration file and prints every
macro iteration in the order it will be served. The schedule depends only
on the configuration, so the output is identical across invocations.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planConfigPath, "config", "", "Search configuration file (required)")
	planCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(planConfigPath)
	if err != nil {
		return err
	}

	strat := cfg.Strategy()
	templates := strat.Templates()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Macro", "Op", "Overlap", "Depth", "Branches", "Bits"})
	table.SetBorder(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})

	for i, steps := range templates {
		for _, s := range steps {
			table.Append(planRow(i, s))
		}
	}
	table.Render()

	fmt.Printf("\nTotal macro iterations: %d\n", len(templates))
	return nil
}

func planRow(macro int, s strategy.Step) []string {
	overlap := ""
	if len(s.Overlap) > 0 {
		overlap = fmt.Sprintf("%g", s.Overlap[0])
	}

	// Merge templates carry no refinement parameters.
	if s.Operation == strategy.Merge {
		return []string{fmt.Sprintf("%d", macro), s.Operation.String(), overlap, "-", "-", "-"}
	}
	return []string{
		fmt.Sprintf("%d", macro),
		s.Operation.String(),
		overlap,
		fmt.Sprintf("%d", s.Params.Refine.DepthMin),
		fmt.Sprintf("%d", s.Params.Refine.BranchMin),
		fmt.Sprintf("%d", s.Params.Refine.BitMin),
	}
}
