package performance

import (
	"sort"
	"sync"

	"github.com/jsphweid/scoreflow/constants"
	"github.com/jsphweid/scoreflow/model"
	"github.com/jsphweid/scoreflow/util"
)

type pedalChange struct {
	time float64
	down bool
}

// pedalChanges returns the sustain pedal state changes in time order, framed
// by an up state before the first event or note-off and another after the
// last one. Consecutive entries always differ in state.
func pedalChanges(controls []model.Control, threshold int, firstOff, lastOff float64) []pedalChange {
	var raw []pedalChange
	for _, c := range controls {
		if c.Type != model.SustainPedal {
			continue
		}
		raw = append(raw, pedalChange{time: c.Time, down: int(c.Value) > threshold})
	}
	if len(raw) == 0 {
		return nil
	}
	sort.SliceStable(raw, func(i, j int) bool {
		return raw[i].time < raw[j].time
	})

	first := util.Min(raw[0].time, firstOff)
	last := util.Max(raw[len(raw)-1].time, lastOff)

	res := []pedalChange{{time: first - 1}}
	for _, c := range raw {
		if c.down != res[len(res)-1].down {
			res = append(res, c)
		}
	}
	if res[len(res)-1].down {
		res = append(res, pedalChange{time: last + 1})
	}
	return res
}

// AdjustOffsetsWithSustain returns, for every note in order, the time it
// stops sounding. A note released while the sustain pedal is down keeps
// sounding until the pedal is next released. Controller values above
// threshold count as down. Only sustain_pedal controls are considered, and
// notes are not modified.
func AdjustOffsetsWithSustain(notes []model.PerformedNote, controls []model.Control, threshold int) []float64 {
	res := make([]float64, len(notes))
	if len(notes) == 0 {
		return res
	}

	firstOff, lastOff := notes[0].NoteOff, notes[0].NoteOff
	for i, n := range notes {
		res[i] = n.NoteOff
		firstOff = util.Min(firstOff, n.NoteOff)
		lastOff = util.Max(lastOff, n.NoteOff)
	}

	changes := pedalChanges(controls, threshold, firstOff, lastOff)
	if len(changes) == 0 {
		return res
	}
	for i, off := range res {
		// last change at or before the release
		k := sort.Search(len(changes), func(j int) bool { return changes[j].time > off }) - 1
		if k >= 0 && changes[k].down {
			res[i] = changes[k+1].time
		}
	}
	return res
}

// PerformedPart is a performance of one instrument. Its notes and controls
// never change; the sound-off table derived from them is replaced as a whole
// whenever the pedal threshold changes.
type PerformedPart struct {
	ID       string
	Name     string
	notes    []model.PerformedNote
	controls []model.Control

	mu        sync.RWMutex
	threshold int
	soundOff  []float64
}

// NewPerformedPart copies notes and controls and derives the sound-off table
// with the default threshold.
func NewPerformedPart(id, name string, notes []model.PerformedNote, controls []model.Control) *PerformedPart {
	p := &PerformedPart{
		ID:       id,
		Name:     name,
		notes:    append([]model.PerformedNote(nil), notes...),
		controls: append([]model.Control(nil), controls...),
	}
	p.SetSustainPedalThreshold(constants.DefaultPedalThreshold)
	return p
}

// SetSustainPedalThreshold recomputes the sound-off table for threshold and
// returns it. Readers see either the old table or the new one.
func (p *PerformedPart) SetSustainPedalThreshold(threshold int) []float64 {
	soundOff := AdjustOffsetsWithSustain(p.notes, p.controls, threshold)

	p.mu.Lock()
	p.threshold = threshold
	p.soundOff = soundOff
	p.mu.Unlock()

	return append([]float64(nil), soundOff...)
}

func (p *PerformedPart) Threshold() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.threshold
}

// SoundOffs returns a copy of the current sound-off table, indexed like Notes.
func (p *PerformedPart) SoundOffs() []float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]float64(nil), p.soundOff...)
}

func (p *PerformedPart) Notes() []model.PerformedNote {
	return append([]model.PerformedNote(nil), p.notes...)
}

func (p *PerformedPart) Controls() []model.Control {
	return append([]model.Control(nil), p.controls...)
}
