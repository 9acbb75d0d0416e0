package game

import (
	"go.uber.org/zap"

	"github.com/lixenwraith/bitswitch/event"
)

// Progress is the level counter and player health
type Progress struct {
	Level     int
	Health    int
	MaxHealth int
}

// Progress returns a snapshot
func (c *Controller) Progress() Progress {
	return c.progress
}

func (c *Controller) Level() int {
	return c.progress.Level
}

func (c *Controller) Health() int {
	return c.progress.Health
}

func (c *Controller) MaxHealth() int {
	return c.progress.MaxHealth
}

// Damage lowers health, clamped at zero
// EventEntityDefeated fires only on the call that moves health from above zero to zero
func (c *Controller) Damage(amount int) {
	if amount <= 0 {
		return
	}
	prev := c.progress.Health
	c.setHealth(prev - amount)
	if prev > 0 && c.progress.Health == 0 {
		c.logger.Info("entity defeated", zap.Int("level", c.progress.Level))
		c.bus.Emit(event.GameEvent{Type: event.EventEntityDefeated})
	}
}

// Heal raises health, clamped at MaxHealth
func (c *Controller) Heal(amount int) {
	if amount <= 0 {
		return
	}
	c.setHealth(c.progress.Health + amount)
}

// SetMaxHealth changes the cap (minimum 1) and clamps current health to it
func (c *Controller) SetMaxHealth(n int) {
	if n < 1 {
		n = 1
	}
	c.progress.MaxHealth = n
	c.setHealth(c.progress.Health)
}

// CompleteLevel advances the level counter; what follows is up to the caller
func (c *Controller) CompleteLevel() {
	done := c.progress.Level
	c.progress.Level++
	c.logger.Info("level completed", zap.Int("level", done))
	c.bus.Emit(event.GameEvent{
		Type:    event.EventLevelCompleted,
		Payload: &event.LevelCompletedPayload{Level: done},
	})
}

func (c *Controller) setHealth(h int) {
	if h < 0 {
		h = 0
	}
	if h > c.progress.MaxHealth {
		h = c.progress.MaxHealth
	}
	if h == c.progress.Health {
		return
	}
	c.progress.Health = h
	c.bus.Emit(event.GameEvent{
		Type:    event.EventHealthChanged,
		Payload: &event.HealthChangedPayload{Health: h, MaxHealth: c.progress.MaxHealth},
	})
}
