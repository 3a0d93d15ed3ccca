package model

// Control types produced by the MIDI reader.
const (
	SustainPedal   = "sustain_pedal"
	SostenutoPedal = "sostenuto_pedal"
	SoftPedal      = "soft_pedal"
)

// PerformedNote is one played note. Times are in seconds or ticks, whichever
// the producer used, as long as notes and controls agree.
type PerformedNote struct {
	ID       string  `json:"id"`
	Pitch    uint8   `json:"pitch"`
	NoteOn   float64 `json:"note_on"`
	NoteOff  float64 `json:"note_off"`
	Velocity uint8   `json:"velocity"`
	Channel  uint8   `json:"channel,omitempty"`
	Track    int     `json:"track,omitempty"`
}

type Control struct {
	Type    string  `json:"type"`
	Time    float64 `json:"time"`
	Value   uint8   `json:"value"`
	Channel uint8   `json:"channel,omitempty"`
	Track   int     `json:"track,omitempty"`
}
