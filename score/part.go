package score

import (
	"sort"

	"github.com/jsphweid/scoreflow/model"
	"github.com/jsphweid/scoreflow/timeline"
	"github.com/pkg/errors"
)

var (
	ErrMeasureOverlap = errors.New("measures overlap")
	ErrMeasureGap     = errors.New("measures are not contiguous")
)

// one division per quarter note when nothing says otherwise
var defaultDivisions = &model.Divisions{Divs: 1}

// Part is one instrument: its timeline and the maps derived from it.
type Part struct {
	ID       string
	Name     string
	Timeline *timeline.Timeline
}

// NewPart places objects on a fresh timeline after checking that every note
// has a voice, every divisions value is positive, every direction has text
// and that the measures tile the part without gaps or overlaps.
func NewPart(id, name string, objects ...model.Object) (*Part, error) {
	for _, o := range objects {
		switch v := o.(type) {
		case *model.Note:
			if !v.HasVoice() {
				return nil, errors.Wrapf(model.ErrMissingVoice, "part %s: note %q", id, v.ID)
			}
		case *model.Divisions:
			if v.Divs <= 0 {
				return nil, errors.Wrapf(model.ErrBadDivisions, "part %s: %d divisions at tick %d", id, v.Divs, v.StartTick)
			}
		case *model.Direction:
			if v.Text == "" {
				return nil, errors.Wrapf(model.ErrEmptyDirection, "part %s: %s at tick %d", id, v.Type, v.StartTick)
			}
		}
	}
	p := &Part{ID: id, Name: name, Timeline: timeline.New(objects...)}
	if err := checkMeasures(timeline.Of[*model.Measure](p.Timeline.All())); err != nil {
		return nil, errors.Wrapf(err, "part %s", id)
	}
	return p, nil
}

func checkMeasures(measures []*model.Measure) error {
	for i := 1; i < len(measures); i++ {
		prev, m := measures[i-1], measures[i]
		switch {
		case m.StartTick < prev.EndTick:
			return errors.Wrapf(ErrMeasureOverlap, "measure %d starts at %d before measure %d ends at %d",
				m.Number, m.StartTick, prev.Number, prev.EndTick)
		case m.StartTick > prev.EndTick:
			return errors.Wrapf(ErrMeasureGap, "gap between measure %d and measure %d", prev.Number, m.Number)
		}
	}
	return nil
}

// Measures returns the part's measures in ascending number order.
func (p *Part) Measures() []*model.Measure {
	measures := timeline.Of[*model.Measure](p.Timeline.All())
	sort.SliceStable(measures, func(i, j int) bool {
		return measures[i].Number < measures[j].Number
	})
	return measures
}

// DivisionsAt returns the ticks per quarter note in effect at tick.
func (p *Part) DivisionsAt(tick int) int {
	return p.Timeline.PrecedingOrEqual(model.KindDivisions, tick, defaultDivisions).(*model.Divisions).Divs
}

// Notes returns every note of the part in timeline order.
func (p *Part) Notes() []*model.Note {
	return timeline.Of[*model.Note](p.Timeline.All())
}
