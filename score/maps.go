package score

import (
	"sort"

	"github.com/jsphweid/scoreflow/model"
	"github.com/jsphweid/scoreflow/timeline"
)

type quarterPoint struct {
	tick    int
	quarter float64
	divs    int
}

// QuarterMap converts ticks to positions in quarter notes, following every
// Divisions change of a part.
type QuarterMap struct {
	points []quarterPoint
}

func (p *Part) QuarterMap() *QuarterMap {
	qm := &QuarterMap{points: []quarterPoint{{tick: 0, divs: defaultDivisions.Divs}}}
	for _, d := range timeline.Of[*model.Divisions](p.Timeline.All()) {
		pt := quarterPoint{tick: d.StartTick, quarter: qm.At(d.StartTick), divs: d.Divs}
		last := &qm.points[len(qm.points)-1]
		if last.tick == pt.tick {
			*last = pt
		} else {
			qm.points = append(qm.points, pt)
		}
	}
	return qm
}

func (qm *QuarterMap) At(tick int) float64 {
	i := sort.Search(len(qm.points), func(i int) bool {
		return qm.points[i].tick > tick
	})
	if i > 0 {
		i--
	}
	pt := qm.points[i]
	return pt.quarter + float64(tick-pt.tick)/float64(pt.divs)
}

type beatPoint struct {
	tick     int
	beat     float64
	beatType int
}

// BeatMap converts ticks to positions in beats, where the beat unit is the
// beat type of the time signature in effect.
type BeatMap struct {
	quarters *QuarterMap
	points   []beatPoint
}

func (p *Part) BeatMap() *BeatMap {
	bm := &BeatMap{
		quarters: p.QuarterMap(),
		points:   []beatPoint{{tick: 0, beatType: 4}},
	}
	for _, ts := range timeline.Of[*model.TimeSignature](p.Timeline.All()) {
		if ts.BeatType <= 0 {
			continue
		}
		pt := beatPoint{tick: ts.StartTick, beat: bm.At(ts.StartTick), beatType: ts.BeatType}
		last := &bm.points[len(bm.points)-1]
		if last.tick == pt.tick {
			*last = pt
		} else {
			bm.points = append(bm.points, pt)
		}
	}
	return bm
}

func (bm *BeatMap) At(tick int) float64 {
	i := sort.Search(len(bm.points), func(i int) bool {
		return bm.points[i].tick > tick
	})
	if i > 0 {
		i--
	}
	pt := bm.points[i]
	quarters := bm.quarters.At(tick) - bm.quarters.At(pt.tick)
	return pt.beat + quarters*float64(pt.beatType)/4
}
