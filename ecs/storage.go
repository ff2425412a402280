package ecs

import "github.com/milk9111/perspective/ecs/component"

// entityStore tracks entity generations and free slots.
type entityStore struct {
	gen   []uint32
	alive []bool
	free  []uint32
	count int
}

func (s *entityStore) create() Entity {
	if s == nil {
		return NoEntity
	}
	var index uint32
	if len(s.free) > 0 {
		index = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		s.gen = append(s.gen, 0)
		s.alive = append(s.alive, false)
		index = uint32(len(s.gen))
	}
	s.alive[index-1] = true
	s.count++
	return component.MakeEntity(index, s.gen[index-1])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	idx := e.Index() - 1
	s.gen[idx]++
	s.alive[idx] = false
	s.free = append(s.free, e.Index())
	s.count--
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	if s == nil || !e.Valid() || int(e.Index()) > len(s.gen) {
		return false
	}
	idx := e.Index() - 1
	return s.alive[idx] && s.gen[idx] == e.Generation()
}

func (s *entityStore) list() []Entity {
	if s == nil || s.count == 0 {
		return nil
	}
	out := make([]Entity, 0, s.count)
	for i, alive := range s.alive {
		if alive {
			out = append(out, component.MakeEntity(uint32(i+1), s.gen[i]))
		}
	}
	return out
}
