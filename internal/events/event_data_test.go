package events

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerRecordedData(t *testing.T) {
	data := AnswerRecordedData{
		AttemptID:     "a1",
		Position:      "RFI_BTN",
		Hand:          "K9o",
		UserAction:    "fold",
		CorrectAction: "raise",
		BoundaryScore: 0.25,
		NextReviewAt:  1_700_000_060_000,
	}

	jsonData, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"correct_action":"raise"`)
	assert.Contains(t, string(jsonData), `"is_correct":false`)
	assert.Equal(t, AnswerRecorded, (&data).EventType())
}

func TestEventTypes(t *testing.T) {
	assert.Equal(t, ProgressReset, (&ProgressResetData{}).EventType())
	assert.Equal(t, SettingsChanged, (&SettingsChangedData{}).EventType())
	assert.Equal(t, BackupCompleted, (&BackupCompletedData{}).EventType())
	assert.Equal(t, ErrorOccurred, (&ErrorEventData{}).EventType())
}

func TestBus_SubscribeAndPublish(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var got []*Event
	unsubscribe := bus.Subscribe(AnswerRecorded, func(e *Event) { got = append(got, e) })
	bus.Subscribe(SettingsChanged, func(e *Event) { t.Fatal("wrong type delivered") })

	bus.Publish(&Event{Type: AnswerRecorded, Module: "trainer"})
	require.Len(t, got, 1)
	assert.Equal(t, "trainer", got[0].Module)

	unsubscribe()
	unsubscribe()
	bus.Publish(&Event{Type: AnswerRecorded})
	assert.Len(t, got, 1)
	assert.Zero(t, bus.SubscriberCount(AnswerRecorded))
	assert.Equal(t, 1, bus.SubscriberCount(SettingsChanged))
}

func TestBus_UnsubscribeKeepsOthers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var a, b int
	unsubA := bus.Subscribe(ProgressReset, func(*Event) { a++ })
	bus.Subscribe(ProgressReset, func(*Event) { b++ })

	unsubA()
	bus.Publish(&Event{Type: ProgressReset})
	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
}

func TestBus_PanickingHandlerIsContained(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	delivered := false
	bus.Subscribe(ErrorOccurred, func(*Event) { panic("boom") })
	bus.Subscribe(ErrorOccurred, func(*Event) { delivered = true })

	assert.NotPanics(t, func() { bus.Publish(&Event{Type: ErrorOccurred}) })
	assert.True(t, delivered)
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var mu sync.Mutex
	count := 0
	bus.Subscribe(AnswerRecorded, func(*Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(&Event{Type: AnswerRecorded})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, count)
}

func TestManager_EmitTyped(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	manager := NewManager(bus, zerolog.Nop())

	var got *Event
	bus.Subscribe(BackupCompleted, func(e *Event) { got = e })

	manager.EmitTyped(BackupCompleted, "reliability", &BackupCompletedData{
		Operation: "export",
		Format:    "msgpack",
		Attempts:  3,
	})

	require.NotNil(t, got)
	assert.Equal(t, "reliability", got.Module)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, "msgpack", got.Data["format"])
	assert.Equal(t, float64(3), got.Data["attempts"])
}

func TestManager_EmitError(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	manager := NewManager(bus, zerolog.Nop())

	var got *Event
	bus.Subscribe(ErrorOccurred, func(e *Event) { got = e })

	manager.EmitError("scheduler", errors.New("upload failed"), map[string]interface{}{"job": "r2_backup"})

	require.NotNil(t, got)
	assert.Equal(t, "upload failed", got.Data["error"])
}
