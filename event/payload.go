package event

import "github.com/lixenwraith/bitswitch/bitmask"

// MaskChangedPayload carries the mask after the mutation
type MaskChangedPayload struct {
	Mask  bitmask.Mask
	Width int
}

// BitChangedPayload carries one raw channel transition, inversion is not applied
type BitChangedPayload struct {
	Index   int
	Enabled bool
}

type WidthChangedPayload struct {
	Width int
}

type HealthChangedPayload struct {
	Health    int
	MaxHealth int
}

// LevelCompletedPayload carries the level just finished
type LevelCompletedPayload struct {
	Level int
}
