package merge

import (
	"github.com/jsphweid/scoreflow/model"
	"github.com/jsphweid/scoreflow/util"
	"github.com/pkg/errors"
)

// AnchorVoice is the voice that must be present to host the voice-independent
// content unless Options.AnyAnchor is set.
const AnchorVoice = 1

var ErrMissingAnchorVoice = errors.New("measure has voices but no anchor voice")

// TieBreak decides the order of a note and a voice-independent element that
// start at the same tick.
type TieBreak int

const (
	NotesFirst TieBreak = iota
	AttributesFirst
)

// Options tune the planner. The zero value requires voice 1 and puts notes
// first on equal onsets.
type Options struct {
	TieBreak TieBreak
	// AnyAnchor lets any present voice host the voice-independent content,
	// instead of failing when voice 1 is absent.
	AnyAnchor bool
}

func isChord(e model.Entry) bool {
	n, ok := e.Element.(*model.NoteElement)
	return ok && n.Chord
}

func reposition(target, cursor int) (model.Entry, bool) {
	if target == cursor {
		return model.Entry{}, false
	}
	return model.Entry{Onset: target, Element: &model.Reposition{Ticks: target - cursor}}, true
}

// WithVoice merges other into the notes of one voice in onset order, starting
// with the cursor at start, and inserts a reposition wherever an element does
// not start at the cursor. It returns the merged stream and the total ticks
// repositioned. Chord notes are never repositioned.
func WithVoice(notes, other []model.Entry, start int, tb TieBreak) ([]model.Entry, int) {
	var res []model.Entry
	cursor, cost := start, 0
	i, j := 0, 0
	for i < len(notes) || j < len(other) {
		takeNote := j >= len(other) ||
			(i < len(notes) && (notes[i].Onset < other[j].Onset ||
				(notes[i].Onset == other[j].Onset && tb == NotesFirst)))

		var e model.Entry
		if takeNote {
			e = notes[i]
			i++
		} else {
			e = other[j]
			j++
		}

		if !isChord(e) {
			if r, ok := reposition(e.Onset, cursor); ok {
				res = append(res, r)
				cost += r.Element.(*model.Reposition).Magnitude()
			}
		}
		res = append(res, e)
		cursor = e.Onset + e.Duration
	}
	return res, cost
}

// Plan is the serialized content of one measure.
type Plan struct {
	// Anchor hosts the voice-independent content; 0 when the measure has no notes.
	Anchor int
	// Costs holds the merge cost of every voice.
	Costs   map[int]int
	Entries []model.Entry
}

// Repositioned is the total number of ticks the plan moves the cursor.
func (p *Plan) Repositioned() int {
	var total int
	for _, e := range p.Entries {
		if r, ok := e.Element.(*model.Reposition); ok {
			total += r.Magnitude()
		}
	}
	return total
}

// Voices plans one measure. voices maps voice ids to their notes in onset
// order; other holds the voice-independent entries in onset order. The voice
// with the lowest merge cost hosts other (lowest id on ties) and the voices
// are laid out one after another in ascending id order.
func Voices(voices map[int][]model.Entry, other []model.Entry, start int, opts Options) (*Plan, error) {
	ids := util.SortedKeys(voices)
	if len(ids) == 0 {
		entries, _ := WithVoice(nil, other, start, opts.TieBreak)
		return &Plan{Costs: map[int]int{}, Entries: entries}, nil
	}
	if _, ok := voices[AnchorVoice]; !ok && !opts.AnyAnchor {
		return nil, errors.Wrapf(ErrMissingAnchorVoice, "voices %v", ids)
	}

	costs := make(map[int]int, len(ids))
	for _, id := range ids {
		_, costs[id] = WithVoice(voices[id], other, start, opts.TieBreak)
	}
	anchor := ids[0]
	for _, id := range ids[1:] {
		if costs[id] < costs[anchor] {
			anchor = id
		}
	}

	plan := &Plan{Anchor: anchor, Costs: costs}
	pos := start
	for _, id := range ids {
		var hosted []model.Entry
		if id == anchor {
			hosted = other
		}
		elements, _ := WithVoice(voices[id], hosted, pos, opts.TieBreak)
		if len(elements) == 0 {
			continue
		}
		plan.Entries = append(plan.Entries, elements...)
		last := elements[len(elements)-1]
		pos = last.Onset + last.Duration
	}
	return plan, nil
}
