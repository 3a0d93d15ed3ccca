package score

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"github.com/jsphweid/scoreflow/model"
	"github.com/pkg/errors"
)

// Document is the JSON form of a score accepted by DecodeJSON.
type Document struct {
	Parts []PartDocument `json:"parts"`
}

type PartDocument struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Measures   []MeasureDocument   `json:"measures"`
	Notes      []NoteDocument      `json:"notes"`
	Divisions  []DivisionsDocument `json:"divisions"`
	Keys       []KeyDocument       `json:"keys"`
	Times      []TimeDocument      `json:"times"`
	Clefs      []ClefDocument      `json:"clefs"`
	Directions []DirectionDocument `json:"directions"`
}

type MeasureDocument struct {
	Number int `json:"number"`
	Start  int `json:"start"`
	End    int `json:"end"`
}

type NoteDocument struct {
	ID      string `json:"id"`
	Step    string `json:"step"`
	Alter   *int   `json:"alter"`
	Octave  int    `json:"octave"`
	Voice   int    `json:"voice"`
	Staff   int    `json:"staff"`
	Grace   string `json:"grace"`
	TiePrev bool   `json:"tie_prev"`
	TieNext bool   `json:"tie_next"`
	Type    string `json:"type"`
	Dots    int    `json:"dots"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

type DivisionsDocument struct {
	Start int `json:"start"`
	Divs  int `json:"divs"`
}

type KeyDocument struct {
	Start  int    `json:"start"`
	Fifths int    `json:"fifths"`
	Mode   string `json:"mode"`
}

type TimeDocument struct {
	Start    int `json:"start"`
	Beats    int `json:"beats"`
	BeatType int `json:"beat_type"`
}

type ClefDocument struct {
	Start        int    `json:"start"`
	Number       int    `json:"number"`
	Sign         string `json:"sign"`
	Line         int    `json:"line"`
	OctaveChange int    `json:"octave_change"`
}

type DirectionDocument struct {
	Type  string `json:"type"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
	Staff int    `json:"staff"`
}

func graceType(s string) (model.GraceType, error) {
	switch s {
	case "":
		return model.GraceNone, nil
	case "acciaccatura":
		return model.GraceAcciaccatura, nil
	case "appoggiatura", "grace":
		return model.GraceAppoggiatura, nil
	}
	return model.GraceNone, errors.Errorf("unknown grace type %q", s)
}

func directionKind(s string) (model.Kind, error) {
	switch s {
	case "", "direction":
		return model.KindDirection, nil
	case "words":
		return model.KindWords, nil
	case "dynamics":
		return model.KindDynamics, nil
	case "tempo":
		return model.KindTempo, nil
	}
	return model.KindDirection, errors.Errorf("unknown direction type %q", s)
}

// Objects converts the document into timeline objects. Notes without an id
// get a generated one.
func (d *PartDocument) Objects() ([]model.Object, error) {
	var objs []model.Object
	for _, m := range d.Measures {
		objs = append(objs, &model.Measure{Number: m.Number, StartTick: m.Start, EndTick: m.End})
	}
	for _, v := range d.Divisions {
		objs = append(objs, &model.Divisions{StartTick: v.Start, Divs: v.Divs})
	}
	for _, k := range d.Keys {
		objs = append(objs, &model.KeySignature{StartTick: k.Start, Fifths: k.Fifths, Mode: k.Mode})
	}
	for _, ts := range d.Times {
		objs = append(objs, &model.TimeSignature{StartTick: ts.Start, Beats: ts.Beats, BeatType: ts.BeatType})
	}
	for _, c := range d.Clefs {
		objs = append(objs, &model.Clef{
			StartTick:    c.Start,
			Number:       c.Number,
			Sign:         c.Sign,
			Line:         c.Line,
			OctaveChange: c.OctaveChange,
		})
	}
	for _, dir := range d.Directions {
		kind, err := directionKind(dir.Type)
		if err != nil {
			return nil, err
		}
		objs = append(objs, &model.Direction{
			Type:      kind,
			StartTick: dir.Start,
			EndTick:   dir.End,
			Text:      dir.Text,
			Staff:     dir.Staff,
		})
	}
	for _, n := range d.Notes {
		id := n.ID
		if id == "" {
			id = "n" + uuid.New().String()
		}
		note, err := model.NewNote(id,
			model.Pitch{Step: n.Step, Alter: n.Alter, Octave: n.Octave},
			n.Voice,
			model.SymbolicDuration{Type: n.Type, Dots: n.Dots},
			n.Start, n.End)
		if err != nil {
			return nil, errors.Wrapf(err, "note %q", id)
		}
		if note.Grace, err = graceType(n.Grace); err != nil {
			return nil, errors.Wrapf(err, "note %q", id)
		}
		note.Staff = n.Staff
		note.TiePrev = n.TiePrev
		note.TieNext = n.TieNext
		objs = append(objs, note)
	}
	return objs, nil
}

// DecodeJSON reads a score document and builds its parts.
func DecodeJSON(r io.Reader) ([]*Part, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "could not decode score")
	}
	parts := make([]*Part, 0, len(doc.Parts))
	for i := range doc.Parts {
		pd := &doc.Parts[i]
		objs, err := pd.Objects()
		if err != nil {
			return nil, errors.Wrapf(err, "part %s", pd.ID)
		}
		p, err := NewPart(pd.ID, pd.Name, objs...)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}
