package input

// IntentType discriminates semantic actions
type IntentType uint8

const (
	IntentNone IntentType = iota

	IntentQuit          // Esc, Ctrl+C
	IntentToggle        // channel key
	IntentResetLevel    // r
	IntentResetGame     // R
	IntentWiden         // +
	IntentNarrow        // -
	IntentDamage        // [
	IntentHeal          // ]
	IntentCompleteLevel // Enter
)

var intentNames = map[IntentType]string{
	IntentNone:          "none",
	IntentQuit:          "quit",
	IntentToggle:        "toggle",
	IntentResetLevel:    "reset_level",
	IntentResetGame:     "reset_game",
	IntentWiden:         "widen",
	IntentNarrow:        "narrow",
	IntentDamage:        "damage",
	IntentHeal:          "heal",
	IntentCompleteLevel: "complete_level",
}

func (t IntentType) String() string {
	if name, ok := intentNames[t]; ok {
		return name
	}
	return "unknown"
}

// Intent is one resolved key press
type Intent struct {
	Type IntentType
	// Channel is set for IntentToggle
	Channel int
}
