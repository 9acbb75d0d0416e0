package input

import (
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

// Controller is the mutation surface the debug keys drive
type Controller interface {
	ToggleBit(index int)
	MaxBits() int
	SetMaxBits(n int)
	ResetLevel()
	ResetGame()
	Damage(amount int)
	Heal(amount int)
	CompleteLevel()
}

// Handler applies key presses to a controller
type Handler struct {
	keys   *KeyMap
	ctrl   Controller
	logger *zap.Logger
}

func NewHandler(keys *KeyMap, ctrl Controller, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		keys:   keys,
		ctrl:   ctrl,
		logger: logger.Named("input"),
	}
}

// HandleKey applies ev and returns false when the player asked to quit
func (h *Handler) HandleKey(ev *tcell.EventKey) bool {
	return h.Apply(h.keys.Resolve(ev.Key(), ev.Rune(), ev.Modifiers()))
}

// Apply performs one intent, false means quit
func (h *Handler) Apply(in Intent) bool {
	switch in.Type {
	case IntentQuit:
		return false
	case IntentToggle:
		h.ctrl.ToggleBit(in.Channel)
	case IntentResetLevel:
		h.ctrl.ResetLevel()
	case IntentResetGame:
		h.ctrl.ResetGame()
	case IntentWiden:
		h.ctrl.SetMaxBits(h.ctrl.MaxBits() + 1)
	case IntentNarrow:
		h.ctrl.SetMaxBits(h.ctrl.MaxBits() - 1)
	case IntentDamage:
		h.ctrl.Damage(1)
	case IntentHeal:
		h.ctrl.Heal(1)
	case IntentCompleteLevel:
		h.ctrl.CompleteLevel()
	default:
		return true
	}
	h.logger.Debug("intent applied", zap.Stringer("intent", in.Type), zap.Int("channel", in.Channel))
	return true
}
