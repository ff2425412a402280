package ecs

import "github.com/milk9111/perspective/ecs/component"

// Entity is the world's generational handle type.
type Entity = component.Entity

// NoEntity is the zero handle; casts and lookups return it for "nothing".
const NoEntity Entity = 0
