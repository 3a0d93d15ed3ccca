package model

import "github.com/jsphweid/scoreflow/util"

// Entry is one element of a measure stream together with the tick it starts
// at and the ticks it advances the cursor by.
type Entry struct {
	Onset    int
	Duration int
	Element  Element
}

// Element is the closed set of things a measure stream can hold:
// *NoteElement, *AttributeGroup, *DirectionElement and *Reposition.
type Element interface {
	element()
}

type TieType uint8

const (
	TieStop TieType = iota
	TieStart
)

func (t TieType) String() string {
	if t == TieStart {
		return "start"
	}
	return "stop"
}

// TieMarker is either the sounding tie (<tie>) or the notated one (<tied>).
type TieMarker struct {
	Notated bool
	Type    TieType
}

type NoteElement struct {
	Note     *Note
	Duration int
	Chord    bool
	Ties     []TieMarker
}

// AttributeGroup holds the attribute objects sharing one onset, ordered
// divisions, key, time, clef.
type AttributeGroup struct {
	Objects []Object
}

type DirectionElement struct {
	Direction *Direction
}

// Reposition moves the cursor by Ticks: forward when positive, backward when negative.
type Reposition struct {
	Ticks int
}

func (*NoteElement) element()      {}
func (*AttributeGroup) element()   {}
func (*DirectionElement) element() {}
func (*Reposition) element()       {}

func (r *Reposition) Forward() bool { return r.Ticks > 0 }

// Magnitude is the absolute number of ticks moved.
func (r *Reposition) Magnitude() int {
	return util.Abs(r.Ticks)
}
