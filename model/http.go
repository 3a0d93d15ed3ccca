package model

type PedalRequestBody struct {
	Notes     []PerformedNote `json:"notes"`
	Controls  []Control       `json:"controls"`
	Threshold *int            `json:"threshold,omitempty"`
}

type PedalResponse struct {
	RequestId string    `json:"request_id"`
	Threshold int       `json:"threshold"`
	SoundOff  []float64 `json:"sound_off"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
