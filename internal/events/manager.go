package events

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Manager stamps and publishes events on a Bus.
type Manager struct {
	bus *Bus
	log zerolog.Logger
}

// NewManager creates a Manager over bus.
func NewManager(bus *Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus: bus,
		log: log.With().Str("component", "event_manager").Logger(),
	}
}

// Emit publishes an event with free-form data.
func (m *Manager) Emit(eventType EventType, module string, data map[string]interface{}) {
	m.bus.Publish(&Event{
		Type:      eventType,
		Module:    module,
		Timestamp: time.Now(),
		Data:      data,
	})
	m.log.Debug().Str("event_type", string(eventType)).Str("module", module).Msg("Event emitted")
}

// EmitTyped publishes an event whose data is a typed struct.
func (m *Manager) EmitTyped(eventType EventType, module string, data EventData) {
	m.Emit(eventType, module, toMap(data))
}

// EmitError publishes an ErrorOccurred event.
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) {
	m.EmitTyped(ErrorOccurred, module, &ErrorEventData{Error: err.Error(), Context: context})
}

// toMap flattens typed data through its JSON form so every subscriber sees
// the same shape regardless of how the event was emitted.
func toMap(data EventData) map[string]interface{} {
	if data == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}
	out := make(map[string]interface{})
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]interface{}{"error": err.Error()}
	}
	return out
}
