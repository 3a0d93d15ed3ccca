package timeline

import (
	"sort"

	"github.com/jsphweid/scoreflow/model"
)

// Timeline is a read-only collection of timed objects sorted by start tick.
// Objects sharing a start tick keep the order they were given in.
type Timeline struct {
	objects []model.Object
	// indexes into objects, per kind, in timeline order
	byKind map[model.Kind][]int
}

func New(objects ...model.Object) *Timeline {
	objs := make([]model.Object, len(objects))
	copy(objs, objects)
	sort.SliceStable(objs, func(i, j int) bool {
		return objs[i].Start() < objs[j].Start()
	})

	byKind := make(map[model.Kind][]int)
	for i, o := range objs {
		byKind[o.Kind()] = append(byKind[o.Kind()], i)
	}
	return &Timeline{objects: objs, byKind: byKind}
}

func (t *Timeline) Len() int {
	return len(t.objects)
}

// All returns every object in timeline order.
func (t *Timeline) All() []model.Object {
	res := make([]model.Object, len(t.objects))
	copy(res, t.objects)
	return res
}

func overlaps(o model.Object, start, end int) bool {
	if o.Start() == o.End() {
		return o.Start() >= start && o.Start() < end
	}
	return o.Start() < end && o.End() > start
}

// Query returns the objects of the given kinds whose interval overlaps
// [start, end). Point objects overlap when they lie inside the interval.
func (t *Timeline) Query(kinds model.KindSet, start, end int) []model.Object {
	n := sort.Search(len(t.objects), func(i int) bool {
		return t.objects[i].Start() >= end
	})
	var res []model.Object
	for _, o := range t.objects[:n] {
		if kinds.Has(o.Kind()) && overlaps(o, start, end) {
			res = append(res, o)
		}
	}
	return res
}

// QueryKind is Query for a single kind, optionally widened to its subtypes.
func (t *Timeline) QueryKind(kind model.Kind, start, end int, includeSubtypes bool) []model.Object {
	kinds := model.Kinds(kind)
	if includeSubtypes {
		kinds = model.Subtypes(kind)
	}
	return t.Query(kinds, start, end)
}

// Starting returns the objects of the given kinds that start inside [start, end).
func (t *Timeline) Starting(kinds model.KindSet, start, end int) []model.Object {
	lo := sort.Search(len(t.objects), func(i int) bool {
		return t.objects[i].Start() >= start
	})
	hi := sort.Search(len(t.objects), func(i int) bool {
		return t.objects[i].Start() >= end
	})
	var res []model.Object
	for _, o := range t.objects[lo:hi] {
		if kinds.Has(o.Kind()) {
			res = append(res, o)
		}
	}
	return res
}

// PrecedingOrEqual returns the last object of kind that starts at or before
// point, or def when there is none.
func (t *Timeline) PrecedingOrEqual(kind model.Kind, point int, def model.Object) model.Object {
	idx := t.byKind[kind]
	i := sort.Search(len(idx), func(i int) bool {
		return t.objects[idx[i]].Start() > point
	})
	if i == 0 {
		return def
	}
	return t.objects[idx[i-1]]
}

// Of keeps the objects of dynamic type T, preserving order.
func Of[T model.Object](objects []model.Object) []T {
	var res []T
	for _, o := range objects {
		if v, ok := o.(T); ok {
			res = append(res, v)
		}
	}
	return res
}
