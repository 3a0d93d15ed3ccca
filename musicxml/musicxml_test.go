package musicxml

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jsphweid/scoreflow/linearize"
	"github.com/jsphweid/scoreflow/merge"
	"github.com/jsphweid/scoreflow/model"
	"github.com/jsphweid/scoreflow/score"
	"github.com/jsphweid/scoreflow/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func note(t *testing.T, id string, voice int, typ string, start, end int) *model.Note {
	n, err := model.NewNote(id, model.Pitch{Step: "C", Octave: 4}, voice, model.SymbolicDuration{Type: typ}, start, end)
	require.NoError(t, err)
	return n
}

// twoVoicePart has voice 2 moving earlier than voice 1 and a clef change
// at tick 1, where only voice 2 has an onset. With notes first on equal
// onsets the merge costs are:
//
//	voice 1: a1 (0->2), backup 2 to the attributes, forward 1 to the clef,
//	         forward 1 to a2 = 4
//	voice 2: b1 (0->1), backup 1 to the attributes, forward 1 to b2,
//	         backup 1 to the clef = 3
//
// Voice 2 hosts. Laid out after voice 1 it adds a backup 4 to its start,
// so the measure repositions 7 ticks (backups 4+1+1, forward 1).
func twoVoicePart(t *testing.T) *score.Part {
	p, err := score.NewPart("P1", "Piano",
		&model.Measure{Number: 1, StartTick: 0, EndTick: 4},
		&model.Divisions{StartTick: 0, Divs: 1},
		&model.KeySignature{StartTick: 0, Fifths: 0, Mode: "major"},
		&model.TimeSignature{StartTick: 0, Beats: 4, BeatType: 4},
		&model.Clef{StartTick: 0, Sign: "G", Line: 2},
		&model.Clef{StartTick: 1, Sign: "F", Line: 4},
		note(t, "a1", 1, "half", 0, 2),
		note(t, "a2", 1, "half", 2, 4),
		note(t, "b1", 2, "quarter", 0, 1),
		note(t, "b2", 2, "quarter", 1, 2),
	)
	require.NoError(t, err)
	return p
}

func export(t *testing.T, parts []*score.Part, opts Options) string {
	var buf bytes.Buffer
	require.NoError(t, ToMusicXML(context.Background(), parts, opts, &buf))
	return buf.String()
}

func TestBuildHostsAttributesInCheapestVoice(t *testing.T) {
	p := twoVoicePart(t)

	plans, err := PlanPart(context.Background(), p, Options{})
	require.NoError(t, err)
	require.Len(t, plans, 1)

	assert := assert.New(t)
	assert.Equal(2, plans[0].Anchor)
	assert.Equal(map[int]int{1: 4, 2: 3}, plans[0].Costs)
	assert.Equal(7, plans[0].Repositioned())

	out := export(t, []*score.Part{p}, Options{})
	firstV2 := strings.Index(out, "<voice>2</voice>")
	lastV1 := strings.LastIndex(out, "<voice>1</voice>")
	require.NotEqual(t, -1, firstV2)
	for _, idx := range allIndexes(out, "<attributes>") {
		assert.Greater(idx, lastV1)
		assert.Greater(idx, firstV2)
	}

	sums, err := Summarize(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(MeasureSummary{Part: "P1", Number: 1, Notes: 4, Attributes: 2, Forward: 1, Backup: 6}, sums[0])
}

func allIndexes(s, substr string) []int {
	var res []int
	for off := 0; ; {
		i := strings.Index(s[off:], substr)
		if i < 0 {
			return res
		}
		res = append(res, off+i)
		off += i + len(substr)
	}
}

func TestWriteToHeader(t *testing.T) {
	out := export(t, []*score.Part{twoVoicePart(t)}, Options{})

	assert := assert.New(t)
	assert.True(strings.HasPrefix(out, xml.Header))
	assert.Contains(out, `<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 3.1 Partwise//EN"`)
	assert.Contains(out, `<score-partwise version="3.1">`)
	assert.Contains(out, "<part-name>Piano</part-name>")
	assert.Equal(1, strings.Count(out, "<!--=======================================================-->"))
	assert.Contains(out, `<measure number="1">`)
}

func TestExportIsDeterministic(t *testing.T) {
	p := twoVoicePart(t)
	a := export(t, []*score.Part{p}, Options{Workers: 4})
	b := export(t, []*score.Part{p}, Options{Workers: 1})
	assert.Equal(t, a, b)
}

func TestExportWritesNothingOnError(t *testing.T) {
	good := twoVoicePart(t)
	bad, err := score.NewPart("P2", "Bad",
		&model.Measure{Number: 1, StartTick: 0, EndTick: 4},
		&model.Divisions{StartTick: 0, Divs: 1},
		note(t, "x", 1, "eighth", 0, 1),
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = ToMusicXML(context.Background(), []*score.Part{good, bad}, Options{}, &buf)
	assert.True(t, errors.Is(err, linearize.ErrFractionalDuration))
	assert.Zero(t, buf.Len())
}

func TestExportMissingAnchorVoice(t *testing.T) {
	p, err := score.NewPart("P1", "",
		&model.Measure{Number: 1, StartTick: 0, EndTick: 4},
		&model.Divisions{StartTick: 0, Divs: 1},
		note(t, "b", 2, "whole", 0, 4),
	)
	require.NoError(t, err)

	_, err = Build(context.Background(), []*score.Part{p}, Options{})
	assert.True(t, errors.Is(err, merge.ErrMissingAnchorVoice))

	doc, err := Build(context.Background(), []*score.Part{p}, Options{Merge: merge.Options{AnyAnchor: true}})
	require.NoError(t, err)
	assert.Len(t, doc.Parts[0].Measures, 1)
}

func TestMeasuresInNumberOrder(t *testing.T) {
	p, err := score.NewPart("P1", "",
		&model.Measure{Number: 1, StartTick: 0, EndTick: 4},
		&model.Measure{Number: 2, StartTick: 4, EndTick: 8},
		&model.Measure{Number: 3, StartTick: 8, EndTick: 12},
		&model.Divisions{StartTick: 0, Divs: 1},
		note(t, "m1", 1, "whole", 0, 4),
		note(t, "m3", 1, "whole", 8, 12),
	)
	require.NoError(t, err)

	out := export(t, []*score.Part{p}, Options{Workers: 3})
	sums, err := Summarize(strings.NewReader(out))
	require.NoError(t, err)

	assert := assert.New(t)
	require.Len(t, sums, 3)
	for i, s := range sums {
		assert.Equal(i+1, s.Number)
	}
	assert.Equal(0, sums[1].Notes)
	assert.Equal(3, strings.Count(out, "<!--="))
}

func TestNoteRendering(t *testing.T) {
	tied := note(t, "t", 1, "quarter", 0, 2)
	tied.TiePrev = true
	tied.TieNext = true
	grace := note(t, "g", 1, "eighth", 1, 1)
	grace.Grace = model.GraceAcciaccatura
	dotted := note(t, "d", 1, "half", 1, 4)
	dotted.SymbolicDuration.Dots = 1
	alter := -1
	dotted.Pitch.Alter = &alter

	p, err := score.NewPart("P1", "",
		&model.Measure{Number: 1, StartTick: 0, EndTick: 4},
		&model.Divisions{StartTick: 0, Divs: 2},
		&model.Direction{Type: model.KindDynamics, StartTick: 0, Text: "p"},
		&model.Direction{Type: model.KindTempo, StartTick: 0, Text: "96"},
		tied, grace, dotted,
	)
	require.NoError(t, err)
	out := export(t, []*score.Part{p}, Options{})

	assert := assert.New(t)
	assert.Contains(out, `<tie type="stop"></tie>`)
	assert.Contains(out, `<tie type="start"></tie>`)
	assert.Contains(out, `<tied type="stop"></tied>`)
	assert.Contains(out, `<grace slash="yes"></grace>`)
	assert.Contains(out, "<dot></dot>")
	assert.Contains(out, "<alter>-1</alter>")
	assert.Contains(out, "<p></p>")
	assert.Contains(out, `<sound tempo="96"></sound>`)
	assert.Contains(out, "<duration>6</duration>")

	sums, err := Summarize(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(1, sums[0].Graces)
	assert.Equal(2, sums[0].Directions)
}

func TestSave(t *testing.T) {
	doc, err := Build(context.Background(), []*score.Part{twoVoicePart(t)}, Options{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.musicxml")
	require.NoError(t, doc.Save(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	sums, err := Summarize(f)
	require.NoError(t, err)
	assert.Len(t, sums, 1)
}

func TestSummarizeRejectsOtherDocuments(t *testing.T) {
	_, err := Summarize(strings.NewReader("<score-timewise></score-timewise>"))
	assert.Error(t, err)
}

func TestExportRejectsBadDivisions(t *testing.T) {
	_, err := score.NewPart("P1", "",
		&model.Measure{Number: 1, StartTick: 0, EndTick: 4},
		&model.Divisions{StartTick: 0, Divs: 0},
		note(t, "w", 1, "whole", 0, 4),
	)
	assert.True(t, errors.Is(err, model.ErrBadDivisions))

	// a part assembled without NewPart still fails instead of guessing a scale
	p := &score.Part{ID: "P1", Timeline: timeline.New(
		&model.Measure{Number: 1, StartTick: 0, EndTick: 4},
		&model.Divisions{StartTick: 0, Divs: 0},
		note(t, "w", 1, "whole", 0, 4),
	)}
	var buf bytes.Buffer
	err = ToMusicXML(context.Background(), []*score.Part{p}, Options{}, &buf)
	assert.True(t, errors.Is(err, model.ErrBadDivisions))
	assert.Zero(t, buf.Len())
}

func TestSummarizeRejectsBadDuration(t *testing.T) {
	doc := `<score-partwise><part id="P1"><measure number="1">
		<backup><duration>two</duration></backup>
	</measure></part></score-partwise>`
	_, err := Summarize(strings.NewReader(doc))
	assert.Error(t, err)

	doc = `<score-partwise><part id="P1"><measure number="1"><forward></forward></measure></part></score-partwise>`
	_, err = Summarize(strings.NewReader(doc))
	assert.Error(t, err)
}
