package constants

import (
	"os"
	"strconv"
)

func GetOutDir() string {
	path := os.Getenv("SCOREFLOW_OUT_DIR")
	if path != "" {
		return path
	}
	return "./out"
}

// GetPedalThreshold returns the sustain pedal threshold from the
// environment, or ok == false when it is unset or not a number.
func GetPedalThreshold() (threshold int, ok bool) {
	v, err := strconv.Atoi(os.Getenv("SCOREFLOW_PEDAL_THRESHOLD"))
	if err != nil {
		return 0, false
	}
	return v, true
}

func GetLogLevel() string {
	return os.Getenv("SCOREFLOW_LOG_LEVEL")
}

// controller values above this count as pedal down
const DefaultPedalThreshold = 64

const MusicXMLVersion = "3.1"

const Doctype = `<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 3.1 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd">`

const MeasureSeparator = "======================================================="

const ServeAddr = ":8080"
