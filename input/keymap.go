package input

import (
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/lixenwraith/bitswitch/bitmask"
)

// DefaultKeys binds channels 0..15 in order
const DefaultKeys = "1234567890abcdef"

// ErrKeyMap reports an unusable channel key string
var ErrKeyMap = errors.New("input: invalid key map")

// System runes, never available as channel keys
var systemRunes = map[rune]IntentType{
	'r': IntentResetLevel,
	'R': IntentResetGame,
	'+': IntentWiden,
	'-': IntentNarrow,
	'[': IntentDamage,
	']': IntentHeal,
}

var systemKeys = map[tcell.Key]IntentType{
	tcell.KeyEscape: IntentQuit,
	tcell.KeyCtrlC:  IntentQuit,
	tcell.KeyEnter:  IntentCompleteLevel,
}

// KeyMap maps runes to channel indices; the i-th rune of the source string drives channel i
type KeyMap struct {
	channels map[rune]int
	keys     []rune
}

// NewKeyMap builds a map from keys
// Repeated runes and runes reserved for system actions are rejected
func NewKeyMap(keys string) (*KeyMap, error) {
	km := &KeyMap{channels: make(map[rune]int)}
	for i, r := range []rune(keys) {
		if i >= bitmask.MaxWidth {
			return nil, errors.Wrapf(ErrKeyMap, "more than %d keys in %q", bitmask.MaxWidth, keys)
		}
		if _, ok := systemRunes[r]; ok {
			return nil, errors.Wrapf(ErrKeyMap, "key %q is reserved", r)
		}
		if prev, ok := km.channels[r]; ok {
			return nil, errors.Wrapf(ErrKeyMap, "key %q bound to channels %d and %d", r, prev, i)
		}
		km.channels[r] = i
		km.keys = append(km.keys, r)
	}
	return km, nil
}

// Channel returns the channel bound to r
func (km *KeyMap) Channel(r rune) (int, bool) {
	i, ok := km.channels[r]
	return i, ok
}

// Key returns the rune bound to channel i, 0 if none
func (km *KeyMap) Key(i int) rune {
	if i < 0 || i >= len(km.keys) {
		return 0
	}
	return km.keys[i]
}

func (km *KeyMap) Len() int {
	return len(km.keys)
}

// Resolve turns a key event's parts into an intent
// Channel keys are resolved regardless of current width, the controller rejects out-of-range toggles
func (km *KeyMap) Resolve(key tcell.Key, r rune, mod tcell.ModMask) Intent {
	if t, ok := systemKeys[key]; ok {
		return Intent{Type: t}
	}
	if key != tcell.KeyRune || mod&(tcell.ModCtrl|tcell.ModAlt) != 0 {
		return Intent{}
	}
	if t, ok := systemRunes[r]; ok {
		return Intent{Type: t}
	}
	if ch, ok := km.channels[r]; ok {
		return Intent{Type: IntentToggle, Channel: ch}
	}
	return Intent{}
}
