package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/bitswitch/directory"
	"github.com/lixenwraith/bitswitch/input"
	"github.com/lixenwraith/bitswitch/level"
	"github.com/lixenwraith/bitswitch/maskable"
	"github.com/lixenwraith/bitswitch/status"
)

// Source is the controller state the HUD reads each frame
type Source interface {
	BinaryString() string
	MaxBits() int
	Level() int
	Health() int
	MaxHealth() int
	Directory() *directory.Directory
}

// Line is one HUD row
type Line struct {
	Text  string
	Style tcell.Style
}

var (
	styleTitle    = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleText     = tcell.StyleDefault
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleActive   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleDetached = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleUnbound  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleDefeated = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true).Reverse(true)
)

const helpText = "Esc quit  r reset level  R reset game  +/- width  [/] damage/heal  Enter next level"

// HUD draws the session state as text rows
type HUD struct {
	src  Source
	reg  *status.Registry
	keys *input.KeyMap
	inst *level.Instance
}

// NewHUD creates a HUD; reg, keys and the level instance may be nil
func NewHUD(src Source, reg *status.Registry, keys *input.KeyMap) *HUD {
	return &HUD{src: src, reg: reg, keys: keys}
}

// SetInstance switches the binding list to inst
func (h *HUD) SetInstance(inst *level.Instance) {
	h.inst = inst
}

// Lines builds the rows for the current state
func (h *HUD) Lines() []Line {
	lines := []Line{
		{Text: h.title(), Style: styleTitle},
		{Text: h.maskLine(), Style: styleText},
	}
	if h.src.Health() == 0 {
		lines = append(lines, Line{Text: " DEFEATED, press r to retry ", Style: styleDefeated})
	}
	lines = append(lines, Line{})

	if h.inst != nil {
		lines = append(lines, Line{Text: "level " + h.inst.Name, Style: styleDim})
		for _, b := range h.inst.Bindings {
			lines = append(lines, h.bindingLine(b))
		}
		lines = append(lines, Line{})
	}

	lines = append(lines, Line{Text: helpText, Style: styleDim})
	return lines
}

func (h *HUD) title() string {
	hp := h.src.Health()
	maxHP := h.src.MaxHealth()
	if hp > maxHP {
		hp = maxHP
	}
	hearts := strings.Repeat("♥", hp) + strings.Repeat("♡", maxHP-hp)
	return fmt.Sprintf("bitswitch  level %d  health %s %d/%d", h.src.Level(), hearts, hp, maxHP)
}

func (h *HUD) maskLine() string {
	text := fmt.Sprintf("mask %s  width %d", h.src.BinaryString(), h.src.MaxBits())
	if h.reg != nil {
		text += fmt.Sprintf("  flips %d", h.reg.Counter(status.MetricFlips).Load())
	}
	return text
}

func (h *HUD) bindingLine(b *maskable.Binding) Line {
	ch := b.Config().Channel

	key := "-"
	if h.keys != nil {
		if r := h.keys.Key(ch); r != 0 {
			key = string(r)
		}
	}

	name := b.Node().Name()
	if owner := b.Owner(); owner != nil {
		name = owner.Name()
	}
	if b.Config().Invert {
		name += " (inv)"
	}

	state := b.State().String()
	style := styleUnbound
	switch bound := h.src.Directory().Get(ch); {
	case b.State() == maskable.StateUnbound:
	case bound == nil:
		// the owner went away or a teardown cleared the channel
		state = "released"
	case bound != b:
		state = "replaced"
	case b.State() == maskable.StateActive:
		style = styleActive
	case b.State() == maskable.StateDetached:
		style = styleDetached
	}

	text := fmt.Sprintf("  ch%-2d [%s] %-20s %-8s", ch, key, name, state)
	if h.reg != nil {
		text += fmt.Sprintf(" flips %d", h.reg.Counter(status.ChannelFlips(ch)).Load())
	}
	return Line{Text: text, Style: style}
}

// Draw clears screen and writes the rows from the top-left corner, clipped to the screen
func (h *HUD) Draw(screen tcell.Screen) {
	w, hgt := screen.Size()
	screen.Clear()
	for y, line := range h.Lines() {
		if y >= hgt {
			break
		}
		x := 0
		for _, r := range line.Text {
			if x >= w {
				break
			}
			screen.SetContent(x, y, r, nil, line.Style)
			x++
		}
	}
	screen.Show()
}
