package component

import (
	"errors"
	"strconv"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

// Entity is a generational handle. The low 32 bits are the slot index (1
// based), the high 32 bits the slot generation. The zero value is "no entity".
// It lives here so components can reference other entities without importing
// the ecs package.
type Entity uint64

const entityIndexBits = 32

func MakeEntity(index, generation uint32) Entity {
	return Entity(uint64(generation)<<entityIndexBits | uint64(index))
}

func (e Entity) Index() uint32 {
	return uint32(e)
}

func (e Entity) Generation() uint32 {
	return uint32(uint64(e) >> entityIndexBits)
}

func (e Entity) Valid() bool {
	return e.Index() > 0
}

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e.Index()), 10) + "v" + strconv.FormatUint(uint64(e.Generation()), 10)
}

type ComponentKind[T any] struct {
	id ComponentID
}

func NewComponentKind[T any]() ComponentKind[T] {
	return ComponentKind[T]{id: ComponentID(nextComponentID.Add(1))}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}

type ComponentID uint32

var nextComponentID atomic.Uint32
