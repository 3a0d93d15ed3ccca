package musicxml

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	xmldom "github.com/subchen/go-xmldom"
)

// MeasureSummary counts what one exported measure contains.
type MeasureSummary struct {
	Part       string
	Number     int
	Notes      int
	Chords     int
	Graces     int
	Attributes int
	Directions int
	Forward    int
	Backup     int
}

// Summarize reads a partwise document and summarizes its measures in
// document order.
func Summarize(r io.Reader) ([]MeasureSummary, error) {
	doc, err := xmldom.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse musicxml")
	}
	if doc.Root == nil || doc.Root.Name != "score-partwise" {
		return nil, errors.New("not a score-partwise document")
	}

	var res []MeasureSummary
	for _, part := range doc.Root.GetChildren("part") {
		for _, m := range part.GetChildren("measure") {
			number, err := strconv.Atoi(m.GetAttributeValue("number"))
			if err != nil {
				return nil, errors.Wrapf(err, "part %s: bad measure number", part.GetAttributeValue("id"))
			}
			s := MeasureSummary{Part: part.GetAttributeValue("id"), Number: number}
			for _, el := range m.Children {
				switch el.Name {
				case "note":
					s.Notes++
					if el.GetChild("chord") != nil {
						s.Chords++
					}
					if el.GetChild("grace") != nil {
						s.Graces++
					}
				case "attributes":
					s.Attributes++
				case "direction":
					s.Directions++
				case "forward", "backup":
					d, err := duration(el)
					if err != nil {
						return nil, errors.Wrapf(err, "part %s measure %d: bad %s duration", s.Part, number, el.Name)
					}
					if el.Name == "forward" {
						s.Forward += d
					} else {
						s.Backup += d
					}
				}
			}
			res = append(res, s)
		}
	}
	return res, nil
}

func duration(n *xmldom.Node) (int, error) {
	d := n.GetChild("duration")
	if d == nil {
		return 0, errors.New("missing duration")
	}
	return strconv.Atoi(strings.TrimSpace(d.Text))
}
