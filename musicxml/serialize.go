package musicxml

import (
	"context"
	"encoding/xml"
	"io"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jsphweid/scoreflow/attributes"
	"github.com/jsphweid/scoreflow/chord"
	"github.com/jsphweid/scoreflow/constants"
	"github.com/jsphweid/scoreflow/linearize"
	"github.com/jsphweid/scoreflow/merge"
	"github.com/jsphweid/scoreflow/model"
	"github.com/jsphweid/scoreflow/score"
	"github.com/pkg/errors"
)

type Options struct {
	Merge merge.Options
	// Workers bounds how many measures of a part are planned at once.
	// Zero means one per CPU.
	Workers int
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// PlanMeasure linearizes, annotates and merges the content of one measure.
func PlanMeasure(p *score.Part, m *model.Measure, opts merge.Options) (*merge.Plan, error) {
	voices, err := linearize.Measure(p, m)
	if err != nil {
		return nil, err
	}
	for _, entries := range voices {
		chord.Annotate(entries)
	}
	plan, err := merge.Voices(voices, attributes.VoiceIndependent(p, m), m.StartTick, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "measure %d", m.Number)
	}
	return plan, nil
}

// PlanPart plans every measure of p, in ascending measure number. Measures
// are planned concurrently; the error of the earliest failing measure wins.
func PlanPart(ctx context.Context, p *score.Part, opts Options) ([]*merge.Plan, error) {
	logger := log.FromContext(ctx)
	measures := p.Measures()
	plans := make([]*merge.Plan, len(measures))
	errs := make([]error, len(measures))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < opts.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				plans[i], errs[i] = PlanMeasure(p, measures[i], opts.Merge)
			}
		}()
	}
	for i := range measures {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "part %s", p.ID)
		}
		logger.Debug("planned measure", "part", p.ID, "measure", measures[i].Number,
			"anchor", plans[i].Anchor, "costs", plans[i].Costs)
	}
	return plans, nil
}

// Build serializes parts into a document. Nothing is returned if any measure fails.
func Build(ctx context.Context, parts []*score.Part, opts Options) (*Document, error) {
	doc := &Document{Version: constants.MusicXMLVersion}
	for _, p := range parts {
		plans, err := PlanPart(ctx, p, opts)
		if err != nil {
			return nil, err
		}
		doc.PartList.ScoreParts = append(doc.PartList.ScoreParts, ScorePart{ID: p.ID, PartName: p.Name})

		xp := &Part{ID: p.ID}
		for i, m := range p.Measures() {
			xp.Measures = append(xp.Measures, measureXML(m, plans[i]))
		}
		doc.Parts = append(doc.Parts, xp)
	}
	log.FromContext(ctx).Info("built musicxml", "parts", len(doc.Parts))
	return doc, nil
}

// ToMusicXML builds parts and writes the document to w. w is untouched on error.
func ToMusicXML(ctx context.Context, parts []*score.Part, opts Options, w io.Writer) error {
	doc, err := Build(ctx, parts, opts)
	if err != nil {
		return err
	}
	_, err = doc.WriteTo(w)
	return err
}

func measureXML(m *model.Measure, plan *merge.Plan) *Measure {
	res := &Measure{Number: m.Number}
	for _, e := range plan.Entries {
		switch el := e.Element.(type) {
		case *model.NoteElement:
			res.Elements = append(res.Elements, noteXML(el))
		case *model.AttributeGroup:
			res.Elements = append(res.Elements, attributesXML(el))
		case *model.DirectionElement:
			res.Elements = append(res.Elements, directionXML(el.Direction))
		case *model.Reposition:
			if el.Forward() {
				res.Elements = append(res.Elements, &Forward{Duration: el.Magnitude()})
			} else {
				res.Elements = append(res.Elements, &Backup{Duration: el.Magnitude()})
			}
		}
	}
	return res
}

func noteXML(el *model.NoteElement) *Note {
	n := el.Note
	res := &Note{
		ID:    n.ID,
		Pitch: Pitch{Step: n.Pitch.Step, Alter: n.Pitch.Alter, Octave: n.Pitch.Octave},
		Voice: n.Voice,
		Type:  n.SymbolicDuration.Type,
		Dots:  make([]Empty, n.SymbolicDuration.Dots),
		Staff: n.Staff,
	}
	switch n.Grace {
	case model.GraceAcciaccatura:
		res.Grace = &Grace{Slash: "yes"}
	case model.GraceAppoggiatura:
		res.Grace = &Grace{}
	default:
		dur := el.Duration
		res.Duration = &dur
	}
	if el.Chord {
		res.Chord = &Empty{}
	}
	for _, t := range el.Ties {
		if !t.Notated {
			res.Ties = append(res.Ties, Tie{Type: t.Type.String()})
			continue
		}
		if res.Notations == nil {
			res.Notations = &Notations{}
		}
		res.Notations.Tied = append(res.Notations.Tied, Tie{Type: t.Type.String()})
	}
	return res
}

func attributesXML(g *model.AttributeGroup) *Attributes {
	res := &Attributes{}
	for _, o := range g.Objects {
		switch a := o.(type) {
		case *model.Divisions:
			res.Divisions = append(res.Divisions, a.Divs)
		case *model.KeySignature:
			res.Keys = append(res.Keys, Key{Fifths: a.Fifths, Mode: a.Mode})
		case *model.TimeSignature:
			res.Times = append(res.Times, Time{Beats: a.Beats, BeatType: a.BeatType})
		case *model.Clef:
			res.Clefs = append(res.Clefs, Clef{
				Number:       a.Number,
				Sign:         a.Sign,
				Line:         a.Line,
				OctaveChange: a.OctaveChange,
			})
		}
	}
	return res
}

var dynamicMarks = map[string]bool{
	"pppppp": true, "ppppp": true, "pppp": true, "ppp": true, "pp": true, "p": true,
	"mp": true, "mf": true, "f": true, "ff": true, "fff": true, "ffff": true,
	"fffff": true, "ffffff": true, "sf": true, "sfp": true, "sfpp": true, "fp": true,
	"rf": true, "rfz": true, "sfz": true, "sffz": true, "fz": true, "n": true, "pf": true, "sfzp": true,
}

func directionXML(d *model.Direction) *Direction {
	res := &Direction{Staff: d.Staff}
	switch d.Type {
	case model.KindDynamics:
		if dynamicMarks[d.Text] {
			res.Type.Dynamics = &Dynamics{Mark: &DynamicMark{XMLName: xml.Name{Local: d.Text}}}
		} else {
			res.Type.Dynamics = &Dynamics{Other: d.Text}
		}
	case model.KindTempo:
		res.Type.Metronome = &Metronome{BeatUnit: "quarter", PerMinute: d.Text}
		res.Sound = &Sound{Tempo: d.Text}
	default:
		res.Type.Words = d.Text
	}
	return res
}
