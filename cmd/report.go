package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/jsphweid/scoreflow/musicxml"
	"github.com/jsphweid/scoreflow/util"
	"github.com/spf13/cobra"
)

var reportDump bool

func init() {
	reportCmd.Flags().BoolVar(&reportDump, "dump", false, "dump every measure plan")
	reportCmd.Flags().BoolVar(&exportAttributesFirst, "attributes-first", false, "put attributes before notes that start with them")
	reportCmd.Flags().BoolVar(&exportAnyAnchor, "any-anchor", false, "let any voice host attributes when voice 1 is absent")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <score.json>",
	Short: "Reports how each measure would be serialized",
	Long: `Plans every measure of a JSON score and prints the voice hosting the
attributes, the merge cost of every voice and the ticks repositioned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(cmd, args[0])
	},
}

func report(cmd *cobra.Command, path string) error {
	ctx := commandContext(cmd)
	parts, err := loadScore(path)
	if err != nil {
		return err
	}
	opts := exportOptions(cmd)
	out := cmd.OutOrStdout()

	var total int64
	for _, p := range parts {
		plans, err := musicxml.PlanPart(ctx, p, opts)
		if err != nil {
			return err
		}
		quarters, beats := p.QuarterMap(), p.BeatMap()
		repositioned := make([]int, len(plans))
		for i, m := range p.Measures() {
			plan := plans[i]
			repositioned[i] = plan.Repositioned()
			fmt.Fprintf(out, "part %s measure %d: anchor %d, repositioned %d, starts at quarter %g beat %g\n",
				p.ID, m.Number, plan.Anchor, repositioned[i], quarters.At(m.StartTick), beats.At(m.StartTick))
			for _, voice := range util.SortedKeys(plan.Costs) {
				fmt.Fprintf(out, "  voice %d cost %d\n", voice, plan.Costs[voice])
			}
			if reportDump {
				fmt.Fprint(out, spew.Sdump(plan.Entries))
			}
		}
		total += util.Sum(repositioned)
	}
	fmt.Fprintf(out, "total repositioned: %d\n", total)
	return nil
}
