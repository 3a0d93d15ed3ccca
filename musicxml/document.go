package musicxml

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"strconv"

	"github.com/jsphweid/scoreflow/constants"
	"github.com/pkg/errors"
)

// Document is an in-memory score-partwise document.
type Document struct {
	XMLName  xml.Name `xml:"score-partwise"`
	Version  string   `xml:"version,attr,omitempty"`
	PartList PartList `xml:"part-list"`
	Parts    []*Part  `xml:"part"`
}

type PartList struct {
	ScoreParts []ScorePart `xml:"score-part"`
}

type ScorePart struct {
	ID       string `xml:"id,attr"`
	PartName string `xml:"part-name"`
}

type Part struct {
	ID       string
	Measures []*Measure
}

// MarshalXML writes the measures of the part, each preceded by a separator comment.
func (p *Part) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "part"}
	start.Attr = []xml.Attr{{Name: xml.Name{Local: "id"}, Value: p.ID}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, m := range p.Measures {
		if err := e.EncodeToken(xml.Comment(constants.MeasureSeparator)); err != nil {
			return err
		}
		if err := e.Encode(m); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// Measure holds its elements in cursor order. Each element is one of *Note,
// *Attributes, *Direction, *Backup or *Forward.
type Measure struct {
	Number   int
	Elements []interface{}
}

func (m *Measure) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "measure"}
	start.Attr = []xml.Attr{{Name: xml.Name{Local: "number"}, Value: strconv.Itoa(m.Number)}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, el := range m.Elements {
		if err := e.Encode(el); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

type Empty struct{}

type Note struct {
	XMLName   xml.Name   `xml:"note"`
	ID        string     `xml:"id,attr,omitempty"`
	Grace     *Grace     `xml:"grace"`
	Chord     *Empty     `xml:"chord"`
	Pitch     Pitch      `xml:"pitch"`
	Duration  *int       `xml:"duration"`
	Ties      []Tie      `xml:"tie"`
	Voice     int        `xml:"voice"`
	Type      string     `xml:"type"`
	Dots      []Empty    `xml:"dot"`
	Staff     int        `xml:"staff,omitempty"`
	Notations *Notations `xml:"notations"`
}

type Grace struct {
	Slash string `xml:"slash,attr,omitempty"`
}

type Pitch struct {
	Step   string `xml:"step"`
	Alter  *int   `xml:"alter"`
	Octave int    `xml:"octave"`
}

type Tie struct {
	Type string `xml:"type,attr"`
}

type Notations struct {
	Tied []Tie `xml:"tied"`
}

type Attributes struct {
	XMLName   xml.Name `xml:"attributes"`
	Divisions []int    `xml:"divisions"`
	Keys      []Key    `xml:"key"`
	Times     []Time   `xml:"time"`
	Clefs     []Clef   `xml:"clef"`
}

type Key struct {
	Fifths int    `xml:"fifths"`
	Mode   string `xml:"mode,omitempty"`
}

type Time struct {
	Beats    int `xml:"beats"`
	BeatType int `xml:"beat-type"`
}

type Clef struct {
	Number       int    `xml:"number,attr,omitempty"`
	Sign         string `xml:"sign"`
	Line         int    `xml:"line"`
	OctaveChange int    `xml:"clef-octave-change,omitempty"`
}

type Direction struct {
	XMLName xml.Name      `xml:"direction"`
	Type    DirectionType `xml:"direction-type"`
	Staff   int           `xml:"staff,omitempty"`
	Sound   *Sound        `xml:"sound"`
}

type DirectionType struct {
	Words     string     `xml:"words,omitempty"`
	Dynamics  *Dynamics  `xml:"dynamics"`
	Metronome *Metronome `xml:"metronome"`
}

// Dynamics holds one mark; the element name is the mark itself, e.g. <p/>.
type Dynamics struct {
	Mark  *DynamicMark `xml:"mark"`
	Other string       `xml:"other-dynamics,omitempty"`
}

type DynamicMark struct {
	XMLName xml.Name
}

type Metronome struct {
	BeatUnit  string `xml:"beat-unit"`
	PerMinute string `xml:"per-minute"`
}

type Sound struct {
	Tempo string `xml:"tempo,attr,omitempty"`
}

type Backup struct {
	XMLName  xml.Name `xml:"backup"`
	Duration int      `xml:"duration"`
}

type Forward struct {
	XMLName  xml.Name `xml:"forward"`
	Duration int      `xml:"duration"`
}

// WriteTo writes the document with an XML declaration and the MusicXML
// partwise doctype, indented two spaces.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(constants.Doctype + "\n")
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(d); err != nil {
		return 0, errors.Wrap(err, "could not encode musicxml")
	}
	buf.WriteString("\n")
	return buf.WriteTo(w)
}

// Save writes the document to path.
func (d *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create output file")
	}
	if _, err := d.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
