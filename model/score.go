package model

import "errors"

// Kind tags every object that can be placed on a timeline. The set is closed:
// new kinds are added here and nowhere else.
type Kind uint8

const (
	KindNote Kind = iota
	KindMeasure
	KindDivisions
	KindKeySignature
	KindTimeSignature
	KindClef
	KindDirection
	KindWords
	KindDynamics
	KindTempo
	numKinds
)

var kindNames = [numKinds]string{
	"note", "measure", "divisions", "key-signature", "time-signature",
	"clef", "direction", "words", "dynamics", "tempo",
}

func (k Kind) String() string {
	if k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

// KindSet is a bit set of kinds used as a query predicate.
type KindSet uint32

func Kinds(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= 1 << k
	}
	return s
}

func (s KindSet) Has(k Kind) bool {
	return s&(1<<k) != 0
}

// Subtypes returns k together with every kind that specializes it.
func Subtypes(k Kind) KindSet {
	if k == KindDirection {
		return Kinds(KindDirection, KindWords, KindDynamics, KindTempo)
	}
	return Kinds(k)
}

// AttributeKinds are the voice-independent kinds rendered inside <attributes>.
var AttributeKinds = Kinds(KindDivisions, KindKeySignature, KindTimeSignature, KindClef)

// Object is anything anchored to a timeline. End is exclusive and never
// smaller than Start; point events have Start == End.
type Object interface {
	Kind() Kind
	Start() int
	End() int
}

var (
	ErrMissingVoice   = errors.New("all notes must have a voice to be exported")
	ErrBadDivisions   = errors.New("divisions must be positive")
	ErrEmptyDirection = errors.New("direction has no text")
)

type GraceType uint8

const (
	GraceNone GraceType = iota
	GraceAcciaccatura
	GraceAppoggiatura
)

type Pitch struct {
	Step   string `json:"step"`
	Alter  *int   `json:"alter,omitempty"`
	Octave int    `json:"octave"`
}

// SymbolicDuration is the notated value of a note, e.g. {"quarter", 1} for a dotted quarter.
type SymbolicDuration struct {
	Type string `json:"type"`
	Dots int    `json:"dots"`
}

type Note struct {
	ID               string
	Pitch            Pitch
	Voice            int
	Staff            int
	Grace            GraceType
	TiePrev          bool
	TieNext          bool
	SymbolicDuration SymbolicDuration
	StartTick        int
	EndTick          int
}

// NewNote builds a note and rejects it when it has no voice.
func NewNote(id string, pitch Pitch, voice int, sym SymbolicDuration, start, end int) (*Note, error) {
	if voice <= 0 {
		return nil, ErrMissingVoice
	}
	if end < start {
		end = start
	}
	return &Note{
		ID:               id,
		Pitch:            pitch,
		Voice:            voice,
		SymbolicDuration: sym,
		StartTick:        start,
		EndTick:          end,
	}, nil
}

func (n *Note) Kind() Kind { return KindNote }
func (n *Note) Start() int { return n.StartTick }
func (n *Note) End() int {
	if n.EndTick < n.StartTick {
		return n.StartTick
	}
	return n.EndTick
}
func (n *Note) IsGrace() bool { return n.Grace != GraceNone }
func (n *Note) HasVoice() bool { return n.Voice > 0 }

type Measure struct {
	Number    int
	StartTick int
	EndTick   int
}

func (m *Measure) Kind() Kind { return KindMeasure }
func (m *Measure) Start() int { return m.StartTick }
func (m *Measure) End() int { return m.EndTick }

// Divisions sets the number of ticks per quarter note from StartTick on.
type Divisions struct {
	StartTick int
	Divs      int
}

func (d *Divisions) Kind() Kind { return KindDivisions }
func (d *Divisions) Start() int { return d.StartTick }
func (d *Divisions) End() int { return d.StartTick }

type KeySignature struct {
	StartTick int
	Fifths    int
	Mode      string
}

func (k *KeySignature) Kind() Kind { return KindKeySignature }
func (k *KeySignature) Start() int { return k.StartTick }
func (k *KeySignature) End() int { return k.StartTick }

type TimeSignature struct {
	StartTick int
	Beats     int
	BeatType  int
}

func (t *TimeSignature) Kind() Kind { return KindTimeSignature }
func (t *TimeSignature) Start() int { return t.StartTick }
func (t *TimeSignature) End() int { return t.StartTick }

// Clef applies to staff Number, or to every staff when Number is 0.
type Clef struct {
	StartTick    int
	Number       int
	Sign         string
	Line         int
	OctaveChange int
}

func (c *Clef) Kind() Kind { return KindClef }
func (c *Clef) Start() int { return c.StartTick }
func (c *Clef) End() int { return c.StartTick }

// Direction is a voice-independent instruction. Type is KindDirection or one
// of its subtypes; Text holds the words, the dynamics mark or the tempo in
// quarter notes per minute.
type Direction struct {
	Type      Kind
	StartTick int
	EndTick   int
	Text      string
	Staff     int
}

func (d *Direction) Kind() Kind { return d.Type }
func (d *Direction) Start() int { return d.StartTick }
func (d *Direction) End() int {
	if d.EndTick < d.StartTick {
		return d.StartTick
	}
	return d.EndTick
}
