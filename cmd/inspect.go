package cmd

import (
	"fmt"
	"os"

	"github.com/jsphweid/scoreflow/musicxml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.musicxml>",
	Short: "Inspects an exported MusicXML file",
	Long:  `Prints what every measure of a partwise MusicXML file contains.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(cmd, args[0])
	},
}

func inspect(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "could not open musicxml")
	}
	defer f.Close()

	summaries, err := musicxml.Summarize(f)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, s := range summaries {
		fmt.Fprintf(out, "part %s measure %d: %d notes (%d chord, %d grace), %d attributes, %d directions, forward %d, backup %d\n",
			s.Part, s.Number, s.Notes, s.Chords, s.Graces, s.Attributes, s.Directions, s.Forward, s.Backup)
	}
	return nil
}
