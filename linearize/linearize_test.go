package linearize

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jsphweid/scoreflow/model"
	"github.com/jsphweid/scoreflow/score"
	"github.com/jsphweid/scoreflow/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteDuration(t *testing.T) {
	cases := []struct {
		divs int
		sym  model.SymbolicDuration
		want int
	}{
		{1, model.SymbolicDuration{Type: "whole"}, 4},
		{1, model.SymbolicDuration{Type: "half"}, 2},
		{1, model.SymbolicDuration{Type: "quarter"}, 1},
		{2, model.SymbolicDuration{Type: "eighth"}, 1},
		{4, model.SymbolicDuration{Type: "quarter", Dots: 1}, 6},
		{4, model.SymbolicDuration{Type: "quarter", Dots: 2}, 7},
		{16, model.SymbolicDuration{Type: "half", Dots: 3}, 60},
		{1, model.SymbolicDuration{Type: "breve"}, 8},
	}
	for _, c := range cases {
		name := fmt.Sprintf("%d divs %s with %d dots", c.divs, c.sym.Type, c.sym.Dots)
		t.Run(name, func(t *testing.T) {
			got, err := NoteDuration(c.divs, c.sym)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestNoteDurationErrors(t *testing.T) {
	_, err := NoteDuration(4, model.SymbolicDuration{Type: "crotchet"})
	assert.True(t, errors.Is(err, ErrUnknownDurationType))

	_, err = NoteDuration(4, model.SymbolicDuration{Type: "quarter", Dots: 9})
	assert.True(t, errors.Is(err, ErrTooManyDots))

	_, err = NoteDuration(1, model.SymbolicDuration{Type: "eighth"})
	assert.True(t, errors.Is(err, ErrFractionalDuration))
}

func TestMeasureGroupsByVoice(t *testing.T) {
	m := &model.Measure{Number: 1, StartTick: 0, EndTick: 8}
	a := &model.Note{ID: "a", Voice: 1, StartTick: 4, SymbolicDuration: model.SymbolicDuration{Type: "half"}}
	b := &model.Note{ID: "b", Voice: 1, StartTick: 0, SymbolicDuration: model.SymbolicDuration{Type: "half"}}
	c := &model.Note{ID: "c", Voice: 2, StartTick: 0, SymbolicDuration: model.SymbolicDuration{Type: "whole"}}
	g := &model.Note{ID: "g", Voice: 2, StartTick: 4, Grace: model.GraceAcciaccatura, SymbolicDuration: model.SymbolicDuration{Type: "eighth"}}
	next := &model.Note{ID: "next", Voice: 1, StartTick: 8, SymbolicDuration: model.SymbolicDuration{Type: "half"}}
	p, err := score.NewPart("P1", "", m, &model.Divisions{Divs: 2}, a, b, c, g, next)
	require.NoError(t, err)

	voices, err := Measure(p, m)
	require.NoError(t, err)

	assert := assert.New(t)
	require.Len(t, voices, 2)
	require.Len(t, voices[1], 2)
	assert.Equal(0, voices[1][0].Onset)
	assert.Equal(4, voices[1][0].Duration)
	assert.Same(b, voices[1][0].Element.(*model.NoteElement).Note)
	assert.Same(a, voices[1][1].Element.(*model.NoteElement).Note)

	require.Len(t, voices[2], 2)
	assert.Equal(8, voices[2][0].Duration)
	assert.Equal(0, voices[2][1].Duration)
}

func TestMeasureMissingVoice(t *testing.T) {
	m := &model.Measure{Number: 3, StartTick: 0, EndTick: 4}
	// bypass NewPart so the linearizer sees the bad note
	p := &score.Part{ID: "P1", Timeline: timeline.New(m,
		&model.Note{ID: "x", StartTick: 0, SymbolicDuration: model.SymbolicDuration{Type: "quarter"}})}

	_, err := Measure(p, m)
	assert.True(t, errors.Is(err, model.ErrMissingVoice))
}

func TestMeasureUnknownType(t *testing.T) {
	m := &model.Measure{Number: 1, StartTick: 0, EndTick: 4}
	p, err := score.NewPart("P1", "", m,
		&model.Note{ID: "x", Voice: 1, SymbolicDuration: model.SymbolicDuration{Type: "minim"}})
	require.NoError(t, err)

	_, err = Measure(p, m)
	assert.True(t, errors.Is(err, ErrUnknownDurationType))
}
