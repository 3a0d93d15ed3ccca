package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jsphweid/scoreflow/midi"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	pedalThreshold int
	pedalOutMidi   string
)

func init() {
	pedalCmd.Flags().IntVar(&pedalThreshold, "threshold", 0, "sustain values above this count as pedal down (default from config, 64)")
	pedalCmd.Flags().StringVar(&pedalOutMidi, "out-midi", "", "also write a MIDI file with notes ending at their sound-off")
	rootCmd.AddCommand(pedalCmd)
}

var pedalCmd = &cobra.Command{
	Use:   "pedal <performance.mid>",
	Short: "Computes sound-off times with the sustain pedal",
	Long: `Reads a performance from a MIDI file and prints, for every note, when it
was released and when it stops sounding once the sustain pedal is applied.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold := cfg.PedalThreshold
		if cmd.Flags().Changed("threshold") {
			threshold = pedalThreshold
		}
		return pedal(cmd, args[0], threshold)
	},
}

func pedal(cmd *cobra.Command, path string, threshold int) error {
	part, err := midi.LoadPerformance(path)
	if err != nil {
		return err
	}
	soundOff := part.SetSustainPedalThreshold(threshold)
	notes := part.Notes()

	var extended int
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\tpitch\tnote_on\tnote_off\tsound_off")
	for i, n := range notes {
		if soundOff[i] > n.NoteOff {
			extended++
		}
		fmt.Fprintf(w, "%s\t%d\t%.3f\t%.3f\t%.3f\n", n.ID, n.Pitch, n.NoteOn, n.NoteOff, soundOff[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	logger.Info("adjusted offsets", "notes", len(notes), "extended", extended, "threshold", threshold)

	if pedalOutMidi == "" {
		return nil
	}
	f, err := os.Create(pedalOutMidi)
	if err != nil {
		return errors.Wrap(err, "could not create midi file")
	}
	if err := midi.SavePerformance(f, part, midi.WriteOptions{UseSoundOff: true}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
