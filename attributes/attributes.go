package attributes

import (
	"sort"

	"github.com/jsphweid/scoreflow/model"
	"github.com/jsphweid/scoreflow/score"
	"github.com/jsphweid/scoreflow/util"
)

// rendering order inside one <attributes> element
var kindRank = map[model.Kind]int{
	model.KindDivisions:     0,
	model.KindKeySignature:  1,
	model.KindTimeSignature: 2,
	model.KindClef:          3,
}

// Batch collects the divisions, key, time and clef objects that start inside
// m and returns one zero-duration attribute group per distinct onset, in
// ascending onset order.
func Batch(p *score.Part, m *model.Measure) []model.Entry {
	byStart := make(map[int][]model.Object)
	for _, o := range p.Timeline.Starting(model.AttributeKinds, m.StartTick, m.EndTick) {
		byStart[o.Start()] = append(byStart[o.Start()], o)
	}

	var res []model.Entry
	for _, t := range util.SortedKeys(byStart) {
		objs := byStart[t]
		sort.SliceStable(objs, func(i, j int) bool {
			return kindRank[objs[i].Kind()] < kindRank[objs[j].Kind()]
		})
		res = append(res, model.Entry{
			Onset:   t,
			Element: &model.AttributeGroup{Objects: objs},
		})
	}
	return res
}

// Directions returns the directions starting inside m as zero-duration entries.
func Directions(p *score.Part, m *model.Measure) []model.Entry {
	var res []model.Entry
	for _, o := range p.Timeline.Starting(model.Subtypes(model.KindDirection), m.StartTick, m.EndTick) {
		res = append(res, model.Entry{
			Onset:   o.Start(),
			Element: &model.DirectionElement{Direction: o.(*model.Direction)},
		})
	}
	return res
}

// VoiceIndependent merges attribute groups and directions into one stream in
// onset order. At equal onsets attribute groups come first.
func VoiceIndependent(p *score.Part, m *model.Measure) []model.Entry {
	res := append(Batch(p, m), Directions(p, m)...)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Onset < res[j].Onset
	})
	return res
}
