package midi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/scoreflow/model"
	"github.com/jsphweid/scoreflow/performance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePerformance(t *testing.T, p *performance.PerformedPart, opts WriteOptions) string {
	path := filepath.Join(t.TempDir(), "performance.mid")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, SavePerformance(f, p, opts))
	require.NoError(t, f.Close())
	return path
}

func TestSaveAndLoadPerformance(t *testing.T) {
	notes := []model.PerformedNote{
		{Pitch: 60, NoteOn: 0, NoteOff: 0.5, Velocity: 90},
		{Pitch: 64, NoteOn: 0.5, NoteOff: 1, Velocity: 70},
	}
	controls := []model.Control{
		{Type: model.SustainPedal, Time: 0.25, Value: 127},
		{Type: model.SustainPedal, Time: 1.5, Value: 0},
		{Type: model.SoftPedal, Time: 0, Value: 100},
	}
	path := writePerformance(t, performance.NewPerformedPart("P1", "", notes, controls), WriteOptions{})

	loaded, err := LoadPerformance(path)
	require.NoError(t, err)

	assert := assert.New(t)
	got := loaded.Notes()
	require.Len(t, got, 2)
	assert.Equal("n0", got[0].ID)
	assert.Equal(uint8(60), got[0].Pitch)
	assert.Equal(uint8(90), got[0].Velocity)
	assert.InDelta(0.5, got[0].NoteOff, 1e-3)
	assert.Equal(uint8(64), got[1].Pitch)
	assert.InDelta(0.5, got[1].NoteOn, 1e-3)
	assert.InDelta(1.0, got[1].NoteOff, 1e-3)

	var types []string
	for _, c := range loaded.Controls() {
		types = append(types, c.Type)
	}
	assert.ElementsMatch([]string{model.SustainPedal, model.SustainPedal, model.SoftPedal}, types)

	offs := loaded.SoundOffs()
	require.Len(t, offs, 2)
	assert.InDelta(1.5, offs[0], 1e-3)
	assert.InDelta(1.5, offs[1], 1e-3)
}

func TestSavePerformanceWithSoundOff(t *testing.T) {
	notes := []model.PerformedNote{{Pitch: 60, NoteOn: 0, NoteOff: 0.5, Velocity: 90}}
	controls := []model.Control{
		{Type: model.SustainPedal, Time: 0.25, Value: 127},
		{Type: model.SustainPedal, Time: 2, Value: 0},
	}
	path := writePerformance(t, performance.NewPerformedPart("P1", "", notes, controls),
		WriteOptions{UseSoundOff: true, TicksPerQuarter: 480, BPM: 90})

	loaded, err := LoadPerformance(path)
	require.NoError(t, err)
	require.Len(t, loaded.Notes(), 1)
	assert.InDelta(t, 2.0, loaded.Notes()[0].NoteOff, 1e-2)
}

func TestReadMidiFileErrors(t *testing.T) {
	_, err := ReadMidiFile(filepath.Join(t.TempDir(), "missing.mid"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "garbage.mid")
	require.NoError(t, os.WriteFile(path, []byte("not a midi file"), 0644))
	_, err = ReadMidiFile(path)
	assert.Error(t, err)
}
