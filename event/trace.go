package event

import (
	"go.uber.org/zap"
)

// Tracer logs selected events at debug level
type Tracer struct {
	logger *zap.Logger
	types  []EventType
}

// NewTracer resolves event names; unknown names are reported and skipped
func NewTracer(logger *zap.Logger, names []string) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracer{logger: logger.Named("trace")}
	for _, name := range names {
		et, ok := GetEventType(name)
		if !ok {
			t.logger.Warn("unknown event name in trace list", zap.String("name", name))
			continue
		}
		t.types = append(t.types, et)
	}
	return t
}

func (t *Tracer) EventTypes() []EventType {
	return t.types
}

func (t *Tracer) HandleEvent(ev GameEvent) {
	t.logger.Debug("event",
		zap.Stringer("type", ev.Type),
		zap.Any("payload", ev.Payload),
	)
}
