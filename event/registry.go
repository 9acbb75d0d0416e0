package event

import "strings"

var (
	nameToType = make(map[string]EventType)
	typeToName = make(map[EventType]string)
)

// RegisterType maps a string name to an EventType
func RegisterType(name string, et EventType) {
	nameToType[name] = et
	typeToName[et] = name
}

// GetEventType resolves a name case-insensitively
func GetEventType(name string) (EventType, bool) {
	if et, ok := nameToType[name]; ok {
		return et, true
	}
	for n, et := range nameToType {
		if strings.EqualFold(n, name) {
			return et, true
		}
	}
	return EventNone, false
}

// GetEventName returns the registered name, "Unknown" otherwise
func GetEventName(et EventType) string {
	if name, ok := typeToName[et]; ok {
		return name
	}
	return "Unknown"
}

func (et EventType) String() string {
	return GetEventName(et)
}

func init() {
	RegisterType("EventMaskChanged", EventMaskChanged)
	RegisterType("EventBitChanged", EventBitChanged)
	RegisterType("EventWidthChanged", EventWidthChanged)
	RegisterType("EventHealthChanged", EventHealthChanged)
	RegisterType("EventEntityDefeated", EventEntityDefeated)
	RegisterType("EventLevelCompleted", EventLevelCompleted)
	RegisterType("EventLevelReset", EventLevelReset)
	RegisterType("EventGameReset", EventGameReset)
}
