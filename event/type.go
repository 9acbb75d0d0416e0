package event

// EventType represents the type of controller notification
type EventType int

const (
	// EventNone is the zero value, never emitted
	EventNone EventType = iota

	// === Mask Event ===

	// EventMaskChanged signals a new canonical mask
	// Trigger: Controller after any mutation that changed at least one bit
	// Consumer: StatusTracker | Payload: *MaskChangedPayload
	EventMaskChanged

	// EventBitChanged signals a single channel transition
	// Trigger: Controller, once per changed bit in ascending index order
	// Consumer: SoundManager, StatusTracker | Payload: *BitChangedPayload
	EventBitChanged

	// EventWidthChanged signals a new channel count
	// Trigger: Controller.SetMaxBits when the clamped width differs
	// Consumer: StatusTracker | Payload: *WidthChangedPayload
	EventWidthChanged

	// === Progress Event ===

	// EventHealthChanged signals a new health value
	// Trigger: Controller damage/heal/reset when health moved
	// Consumer: StatusTracker | Payload: *HealthChangedPayload
	EventHealthChanged

	// EventEntityDefeated signals health crossing into zero
	// Trigger: Controller.Damage, once per crossing
	// Consumer: SoundManager, StatusTracker | Payload: nil
	EventEntityDefeated

	// EventLevelCompleted signals the level counter advanced
	// Trigger: Controller.CompleteLevel
	// Consumer: SoundManager, StatusTracker, level rebuild in cmd/bitswitch | Payload: *LevelCompletedPayload
	EventLevelCompleted

	// === Lifecycle Event ===

	// EventLevelReset signals mask and health were restored
	// Trigger: Controller.ResetLevel, Controller.ResetGame
	// Consumer: Tracer | Payload: nil
	EventLevelReset

	// EventGameReset signals the level counter returned to its initial value
	// Trigger: Controller.ResetGame
	// Consumer: Tracer | Payload: nil
	EventGameReset
)

// GameEvent is a single notification delivered synchronously on the bus
type GameEvent struct {
	Type    EventType
	Payload any
}
