package midi

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jsphweid/scoreflow/model"
	"github.com/jsphweid/scoreflow/performance"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// controller numbers of the pedals
var pedalControllers = map[uint8]string{
	64: model.SustainPedal,
	66: model.SostenutoPedal,
	67: model.SoftPedal,
}

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	// smf panics on some malformed files
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s, e = nil, errors.Errorf("could not parse midi file %s: %v", filepath, r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "could not read midi file")
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse midi file %s", filepath)
	}
	return res, nil
}

type noteKey struct {
	track   int
	channel uint8
	key     uint8
}

// LoadPerformance reads a MIDI file into a performed part. Times are in
// seconds. Pedal controllers become controls; other controllers are dropped.
func LoadPerformance(path string) (*performance.PerformedPart, error) {
	s, err := ReadMidiFile(path)
	if err != nil {
		return nil, err
	}
	notes, controls := Events(s)
	return performance.NewPerformedPart(path, "", notes, controls), nil
}

// Events extracts the notes and pedal controls of every track of s, notes
// ordered by onset. A note still sounding at the end of its track ends there.
func Events(s *smf.SMF) ([]model.PerformedNote, []model.Control) {
	var notes []model.PerformedNote
	var controls []model.Control

	for ti, track := range s.Tracks {
		var absTicks int64
		sounding := make(map[noteKey][]int)
		for _, event := range track {
			absTicks += int64(event.Delta)
			seconds := float64(s.TimeAt(absTicks)) / 1e6

			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
				k := noteKey{ti, channel, key}
				sounding[k] = append(sounding[k], len(notes))
				notes = append(notes, model.PerformedNote{
					Pitch:    key,
					NoteOn:   seconds,
					NoteOff:  seconds,
					Velocity: velocity,
					Channel:  channel,
					Track:    ti,
				})
			case event.Message.GetNoteOff(&channel, &key, &velocity),
				event.Message.GetNoteOn(&channel, &key, &velocity):
				k := noteKey{ti, channel, key}
				if open := sounding[k]; len(open) > 0 {
					notes[open[0]].NoteOff = seconds
					sounding[k] = open[1:]
				}
			case event.Message.GetControlChange(&channel, &key, &velocity):
				if typ, ok := pedalControllers[key]; ok {
					controls = append(controls, model.Control{
						Type:    typ,
						Time:    seconds,
						Value:   velocity,
						Channel: channel,
						Track:   ti,
					})
				}
			}
		}
		end := float64(s.TimeAt(absTicks)) / 1e6
		for _, open := range sounding {
			for _, i := range open {
				notes[i].NoteOff = end
			}
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].NoteOn < notes[j].NoteOn
	})
	for i := range notes {
		notes[i].ID = fmt.Sprintf("n%d", i)
	}
	sort.SliceStable(controls, func(i, j int) bool {
		return controls[i].Time < controls[j].Time
	})
	return notes, controls
}

type WriteOptions struct {
	// UseSoundOff ends every note at its sound-off time instead of its release.
	UseSoundOff     bool
	TicksPerQuarter uint16
	BPM             float64
}

func (o WriteOptions) withDefaults() WriteOptions {
	if o.TicksPerQuarter == 0 {
		o.TicksPerQuarter = 960
	}
	if o.BPM <= 0 {
		o.BPM = 120
	}
	return o
}

type timedMessage struct {
	tick uint32
	// note-offs sort before note-ons on the same tick
	order int
	msg   midi.Message
}

// SavePerformance writes p as a single-track MIDI file at a constant tempo.
func SavePerformance(w io.Writer, p *performance.PerformedPart, opts WriteOptions) error {
	opts = opts.withDefaults()
	toTicks := func(seconds float64) uint32 {
		if seconds < 0 {
			return 0
		}
		return uint32(seconds*opts.BPM/60*float64(opts.TicksPerQuarter) + 0.5)
	}

	notes := p.Notes()
	offs := make([]float64, len(notes))
	for i, n := range notes {
		offs[i] = n.NoteOff
	}
	if opts.UseSoundOff {
		offs = p.SoundOffs()
	}

	var events []timedMessage
	for _, c := range p.Controls() {
		for cc, typ := range pedalControllers {
			if typ == c.Type {
				events = append(events, timedMessage{toTicks(c.Time), 1, midi.ControlChange(c.Channel, cc, c.Value)})
			}
		}
	}
	for i, n := range notes {
		events = append(events,
			timedMessage{toTicks(n.NoteOn), 2, midi.NoteOn(n.Channel, n.Pitch, n.Velocity)},
			timedMessage{toTicks(offs[i]), 0, midi.NoteOff(n.Channel, n.Pitch)})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].order < events[j].order
	})

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(opts.TicksPerQuarter)
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(opts.BPM))
	var last uint32
	for _, e := range events {
		tr.Add(e.tick-last, e.msg)
		last = e.tick
	}
	tr.Close(0)
	if err := s.Add(tr); err != nil {
		return errors.Wrap(err, "could not add track")
	}
	if _, err := s.WriteTo(w); err != nil {
		return errors.Wrap(err, "could not write midi")
	}
	return nil
}
