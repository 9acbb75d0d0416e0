package status

import (
	"fmt"

	"go.uber.org/atomic"

	"github.com/lixenwraith/bitswitch/bitmask"
	"github.com/lixenwraith/bitswitch/event"
)

// Metric names written by Tracker
const (
	MetricFlips     = "flips.total"
	MetricDefeats   = "defeats"
	MetricLevels    = "levels.completed"
	MetricMask      = "mask"
	MetricWidth     = "width"
	MetricDefeated  = "defeated"
	channelFlipsFmt = "flips.ch%02d"
)

// ChannelFlips names the per-channel flip counter
func ChannelFlips(index int) string {
	return fmt.Sprintf(channelFlipsFmt, index)
}

// Tracker feeds controller notifications into a Registry
type Tracker struct {
	flips    *atomic.Int64
	defeats  *atomic.Int64
	levels   *atomic.Int64
	mask     *atomic.String
	width    *atomic.Int64
	defeated *atomic.Bool
	channels [bitmask.MaxWidth]*atomic.Int64
}

// NewTracker caches metric pointers up front so HandleEvent never locks
func NewTracker(reg *Registry, width int) *Tracker {
	t := &Tracker{
		flips:    reg.Counter(MetricFlips),
		defeats:  reg.Counter(MetricDefeats),
		levels:   reg.Counter(MetricLevels),
		mask:     reg.Label(MetricMask),
		width:    reg.Counter(MetricWidth),
		defeated: reg.Flag(MetricDefeated),
	}
	for i := range t.channels {
		t.channels[i] = reg.Counter(ChannelFlips(i))
	}
	t.width.Store(int64(bitmask.ClampWidth(width)))
	t.mask.Store(bitmask.FormatBinary(0, width))
	return t
}

func (t *Tracker) EventTypes() []event.EventType {
	return []event.EventType{
		event.EventMaskChanged,
		event.EventBitChanged,
		event.EventWidthChanged,
		event.EventEntityDefeated,
		event.EventHealthChanged,
		event.EventLevelCompleted,
	}
}

func (t *Tracker) HandleEvent(ev event.GameEvent) {
	switch ev.Type {
	case event.EventMaskChanged:
		if p, ok := ev.Payload.(*event.MaskChangedPayload); ok {
			t.mask.Store(bitmask.FormatBinary(p.Mask, p.Width))
		}
	case event.EventBitChanged:
		if p, ok := ev.Payload.(*event.BitChangedPayload); ok && p.Index >= 0 && p.Index < len(t.channels) {
			t.flips.Inc()
			t.channels[p.Index].Inc()
		}
	case event.EventWidthChanged:
		if p, ok := ev.Payload.(*event.WidthChangedPayload); ok {
			t.width.Store(int64(p.Width))
		}
	case event.EventEntityDefeated:
		t.defeats.Inc()
		t.defeated.Store(true)
	case event.EventHealthChanged:
		if p, ok := ev.Payload.(*event.HealthChangedPayload); ok && p.Health > 0 {
			t.defeated.Store(false)
		}
	case event.EventLevelCompleted:
		t.levels.Inc()
	}
}

// Flips returns the flip count of one channel
func (t *Tracker) Flips(index int) int64 {
	if index < 0 || index >= len(t.channels) {
		return 0
	}
	return t.channels[index].Load()
}
