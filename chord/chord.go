package chord

import (
	"github.com/jsphweid/scoreflow/model"
)

// AnnotateChords marks every note that starts together with the preceding
// non-grace note of the same voice. A grace note resets the tracking, so the
// note after a grace note is never chorded against it.
// entries must be one voice in onset order.
func AnnotateChords(entries []model.Entry) {
	prev, hasPrev := 0, false
	for _, e := range entries {
		n, ok := e.Element.(*model.NoteElement)
		if !ok {
			continue
		}
		n.Chord = hasPrev && e.Onset == prev
		if n.Note.IsGrace() {
			hasPrev = false
		} else {
			prev, hasPrev = e.Onset, true
		}
	}
}

// TieMarkers returns the sounding and notated markers for a note's ties.
// A note in the middle of a chain gets both stop and start. Markers come
// from the note's own flags only: chains spanning three or more measures
// are not followed.
func TieMarkers(n *model.Note) []model.TieMarker {
	var res []model.TieMarker
	if n.TiePrev {
		res = append(res, model.TieMarker{Type: model.TieStop})
	}
	if n.TieNext {
		res = append(res, model.TieMarker{Type: model.TieStart})
	}
	if n.TiePrev {
		res = append(res, model.TieMarker{Notated: true, Type: model.TieStop})
	}
	if n.TieNext {
		res = append(res, model.TieMarker{Notated: true, Type: model.TieStart})
	}
	return res
}

// Annotate applies chord and tie annotations to one voice.
func Annotate(entries []model.Entry) {
	AnnotateChords(entries)
	for _, e := range entries {
		if n, ok := e.Element.(*model.NoteElement); ok {
			n.Ties = TieMarkers(n.Note)
		}
	}
}
