package linearize

import (
	"math/big"
	"sort"

	"github.com/jsphweid/scoreflow/model"
	"github.com/jsphweid/scoreflow/score"
	"github.com/jsphweid/scoreflow/timeline"
	"github.com/pkg/errors"
)

var (
	ErrUnknownDurationType = errors.New("unknown symbolic duration type")
	ErrTooManyDots         = errors.New("too many dots")
	ErrFractionalDuration  = errors.New("duration is not a whole number of divisions")
)

// length of each note type in quarter notes
var labelDurs = map[string]*big.Rat{
	"long":    big.NewRat(16, 1),
	"breve":   big.NewRat(8, 1),
	"whole":   big.NewRat(4, 1),
	"half":    big.NewRat(2, 1),
	"quarter": big.NewRat(1, 1),
	"eighth":  big.NewRat(1, 2),
	"16th":    big.NewRat(1, 4),
	"32nd":    big.NewRat(1, 8),
	"64th":    big.NewRat(1, 16),
	"128th":   big.NewRat(1, 32),
	"256th":   big.NewRat(1, 64),
}

// each dot adds half of the previous addition
var dotMultipliers = []*big.Rat{
	big.NewRat(1, 1),
	big.NewRat(3, 2),
	big.NewRat(7, 4),
	big.NewRat(15, 8),
	big.NewRat(31, 16),
}

// NoteDuration returns the length in ticks of a note of the given symbolic
// duration when divs ticks make a quarter note. It never rounds.
func NoteDuration(divs int, sym model.SymbolicDuration) (int, error) {
	if divs <= 0 {
		return 0, errors.Wrapf(model.ErrBadDivisions, "%d divisions", divs)
	}
	base, ok := labelDurs[sym.Type]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownDurationType, "%q", sym.Type)
	}
	if sym.Dots < 0 || sym.Dots >= len(dotMultipliers) {
		return 0, errors.Wrapf(ErrTooManyDots, "%d dots", sym.Dots)
	}
	dur := new(big.Rat).SetInt64(int64(divs))
	dur.Mul(dur, base)
	dur.Mul(dur, dotMultipliers[sym.Dots])
	if !dur.IsInt() {
		return 0, errors.Wrapf(ErrFractionalDuration, "%s with %d dots at %d divisions is %s",
			sym.Type, sym.Dots, divs, dur.RatString())
	}
	return int(dur.Num().Int64()), nil
}

// Measure groups the notes starting inside m by voice and returns, for every
// voice, its notes as entries in ascending onset order. Grace notes take no time.
func Measure(p *score.Part, m *model.Measure) (map[int][]model.Entry, error) {
	notes := timeline.Of[*model.Note](p.Timeline.Starting(model.Kinds(model.KindNote), m.StartTick, m.EndTick))
	for _, n := range notes {
		if !n.HasVoice() {
			return nil, errors.Wrapf(model.ErrMissingVoice, "measure %d: note %q", m.Number, n.ID)
		}
	}

	byVoice := make(map[int][]model.Entry)
	for _, n := range notes {
		var dur int
		if !n.IsGrace() {
			var err error
			dur, err = NoteDuration(p.DivisionsAt(n.StartTick), n.SymbolicDuration)
			if err != nil {
				return nil, errors.Wrapf(err, "measure %d: note %q", m.Number, n.ID)
			}
		}
		byVoice[n.Voice] = append(byVoice[n.Voice], model.Entry{
			Onset:    n.StartTick,
			Duration: dur,
			Element:  &model.NoteElement{Note: n, Duration: dur},
		})
	}

	for _, entries := range byVoice {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Onset < entries[j].Onset
		})
	}
	return byVoice, nil
}
