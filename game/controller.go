package game

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lixenwraith/bitswitch/bitmask"
	"github.com/lixenwraith/bitswitch/directory"
	"github.com/lixenwraith/bitswitch/event"
)

// Defaults applied by New for zero-valued options
const (
	DefaultMaxBits      = 8
	DefaultMaxHealth    = 3
	DefaultInitialLevel = 1
)

// Options configures a Controller
type Options struct {
	MaxBits      int
	MaxHealth    int
	InitialLevel int
	Logger       *zap.Logger
	// Bus receives every notification; a private bus is created when nil
	Bus *event.Bus
}

// Controller owns the canonical mask, the channel directory and level progress
// One instance per session, passed to every component that mutates or observes channels
// Not safe for concurrent use; all calls run on the game loop and settle before returning
type Controller struct {
	bits   *bitmask.Registry
	dir    *directory.Directory
	bus    *event.Bus
	logger *zap.Logger

	progress     Progress
	initialLevel int
}

// New creates a controller with a clear mask and full health
func New(opts Options) *Controller {
	if opts.MaxBits == 0 {
		opts.MaxBits = DefaultMaxBits
	}
	if opts.MaxHealth < 1 {
		opts.MaxHealth = DefaultMaxHealth
	}
	if opts.InitialLevel == 0 {
		opts.InitialLevel = DefaultInitialLevel
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Bus == nil {
		opts.Bus = event.NewBus()
	}

	bits := bitmask.New(opts.MaxBits)
	return &Controller{
		bits:   bits,
		dir:    directory.New(bits, opts.Logger),
		bus:    opts.Bus,
		logger: opts.Logger.Named("controller"),
		progress: Progress{
			Level:     opts.InitialLevel,
			Health:    opts.MaxHealth,
			MaxHealth: opts.MaxHealth,
		},
		initialLevel: opts.InitialLevel,
	}
}

func (c *Controller) Bus() *event.Bus {
	return c.bus
}

func (c *Controller) Directory() *directory.Directory {
	return c.dir
}

// ===== CHANNEL ACCESSORS =====

func (c *Controller) IsBitSet(index int) bool {
	return c.bits.IsBitSet(index)
}

func (c *Controller) Mask() bitmask.Mask {
	return c.bits.Mask()
}

func (c *Controller) MaxBits() int {
	return c.bits.Width()
}

// BinaryString renders the mask MSB first, exactly MaxBits characters
func (c *Controller) BinaryString() string {
	return c.bits.String()
}

// ===== REGISTRATION =====

// Register binds obs to a channel, see directory.Directory.Register
// Returns directory.ErrChannelRange for indices outside [0, MaxBits)
// and directory.ErrReleased when life is already dead
func (c *Controller) Register(index int, obs directory.Observer, life directory.Lifetime) error {
	if err := c.dir.Register(index, obs, life); err != nil {
		return errors.Wrapf(err, "width %d", c.bits.Width())
	}
	return nil
}

func (c *Controller) Unregister(index int) {
	c.dir.Unregister(index)
}

// ===== MUTATION =====

// SetBit sets or clears one channel; writing the current value emits nothing
func (c *Controller) SetBit(index int, enabled bool) {
	if !c.bits.InRange(index) {
		c.logger.Warn("set on channel outside width", zap.Int("channel", index), zap.Int("width", c.bits.Width()))
		return
	}
	old := c.bits.Mask()
	if c.bits.SetBit(index, enabled) {
		c.dispatch(old)
	}
}

// ToggleBit flips one channel
func (c *Controller) ToggleBit(index int) {
	old := c.bits.Mask()
	if !c.bits.ToggleBit(index) {
		c.logger.Warn("toggle on channel outside width", zap.Int("channel", index), zap.Int("width", c.bits.Width()))
		return
	}
	c.dispatch(old)
}

// SetMask replaces the mask in one assignment; bits above MaxBits are dropped
func (c *Controller) SetMask(m bitmask.Mask) {
	old := c.bits.SetMask(m)
	c.dispatch(old)
}

// SetFromBinaryString replaces the mask from an MSB-first '0'/'1' string
// The whole mask is assigned before the first per-bit notification
func (c *Controller) SetFromBinaryString(s string) {
	old := c.bits.SetFromBinaryString(s)
	c.dispatch(old)
}

// SetMaxBits clamps n to [1, 16]; stored bits above the new width are kept but unreachable
func (c *Controller) SetMaxBits(n int) {
	width, changed := c.bits.SetWidth(n)
	if !changed {
		return
	}
	c.logger.Info("channel width changed", zap.Int("width", width))
	c.bus.Emit(event.GameEvent{
		Type:    event.EventWidthChanged,
		Payload: &event.WidthChangedPayload{Width: width},
	})
}

// dispatch fans out the difference between old and the current mask
// Order: one aggregate event, then per changed bit ascending: bit event, directory delivery
func (c *Controller) dispatch(old bitmask.Mask) {
	cur := c.bits.Mask()
	changed := old.Changed(cur, c.bits.Width())
	if len(changed) == 0 {
		return
	}

	c.bus.Emit(event.GameEvent{
		Type:    event.EventMaskChanged,
		Payload: &event.MaskChangedPayload{Mask: cur, Width: c.bits.Width()},
	})

	for _, i := range changed {
		enabled := cur.Has(i)
		// A handler earlier in this pass already moved this bit and notified for it
		if c.bits.Mask().Has(i) != enabled {
			continue
		}
		c.bus.Emit(event.GameEvent{
			Type:    event.EventBitChanged,
			Payload: &event.BitChangedPayload{Index: i, Enabled: enabled},
		})
		c.dir.Notify(i, enabled)
	}
}

// ===== LIFECYCLE =====

// ResetLevel clears the mask through the normal notification path and restores health
func (c *Controller) ResetLevel() {
	old := c.bits.Reset()
	c.dispatch(old)
	c.setHealth(c.progress.MaxHealth)
	c.bus.Emit(event.GameEvent{Type: event.EventLevelReset})
}

// ResetGame resets the level and returns the level counter to its initial value
func (c *Controller) ResetGame() {
	c.ResetLevel()
	c.progress.Level = c.initialLevel
	c.bus.Emit(event.GameEvent{Type: event.EventGameReset})
}
