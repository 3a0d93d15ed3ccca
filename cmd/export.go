package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/scoreflow/merge"
	"github.com/jsphweid/scoreflow/musicxml"
	"github.com/jsphweid/scoreflow/score"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	exportOut             string
	exportAttributesFirst bool
	exportAnyAnchor       bool
	exportWorkers         int
)

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default <out_dir>/<input>.musicxml)")
	exportCmd.Flags().BoolVar(&exportAttributesFirst, "attributes-first", false, "put attributes before notes that start with them")
	exportCmd.Flags().BoolVar(&exportAnyAnchor, "any-anchor", false, "let any voice host attributes when voice 1 is absent")
	exportCmd.Flags().IntVar(&exportWorkers, "workers", 0, "measures planned at once (default one per CPU)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <score.json>",
	Short: "Exports a score to MusicXML",
	Long:  `Reads a JSON score and writes it as a partwise MusicXML document.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return export(cmd, args[0])
	},
}

// exportOptions merges the config file with the flags that were set.
func exportOptions(cmd *cobra.Command) musicxml.Options {
	opts := musicxml.Options{
		Merge:   merge.Options{AnyAnchor: cfg.Export.AnyAnchor},
		Workers: cfg.Export.Workers,
	}
	if cfg.Export.AttributesFirst {
		opts.Merge.TieBreak = merge.AttributesFirst
	}
	if cmd.Flags().Changed("attributes-first") {
		opts.Merge.TieBreak = merge.NotesFirst
		if exportAttributesFirst {
			opts.Merge.TieBreak = merge.AttributesFirst
		}
	}
	if cmd.Flags().Changed("any-anchor") {
		opts.Merge.AnyAnchor = exportAnyAnchor
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = exportWorkers
	}
	return opts
}

func loadScore(path string) ([]*score.Part, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open score")
	}
	defer f.Close()
	return score.DecodeJSON(f)
}

func export(cmd *cobra.Command, path string) error {
	ctx := commandContext(cmd)
	parts, err := loadScore(path)
	if err != nil {
		return err
	}
	doc, err := musicxml.Build(ctx, parts, exportOptions(cmd))
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
			return errors.Wrap(err, "could not create output dir")
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		out = filepath.Join(cfg.OutDir, name+".musicxml")
	}
	if err := doc.Save(out); err != nil {
		return err
	}
	logger.Info("exported", "parts", len(parts), "path", out)
	return nil
}
