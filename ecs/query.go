package ecs

import "github.com/milk9111/perspective/ecs/component"

// IntersectEntities returns entities present in both sets.
func IntersectEntities(a, b *SparseSet) []Entity {
	if a == nil || b == nil {
		return nil
	}
	// iterate smaller set
	if a.Len() > b.Len() {
		a, b = b, a
	}
	out := make([]Entity, 0, a.Len())
	for _, e := range a.Entities() {
		if b.Has(e) {
			out = append(out, e)
		}
	}
	return out
}

func intersect(w *World, ids ...component.ComponentID) []Entity {
	if len(ids) == 0 {
		return nil
	}
	sets := make([]*SparseSet, 0, len(ids))
	for _, id := range ids {
		s := w.store(id, false)
		if s == nil {
			return nil
		}
		sets = append(sets, s)
	}
	smallest := sets[0]
	for _, s := range sets[1:] {
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}
	out := make([]Entity, 0, smallest.Len())
outer:
	for _, e := range smallest.Entities() {
		if !w.entities.isAlive(e) {
			continue
		}
		for _, s := range sets {
			if !s.Has(e) {
				continue outer
			}
		}
		out = append(out, e)
	}
	return out
}
