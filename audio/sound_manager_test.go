package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/bitswitch/event"
)

// TestSoundManagerGracefulDegradation verifies audio operations don't panic when not initialized
func TestSoundManagerGracefulDegradation(t *testing.T) {
	sm := NewSoundManager(nil)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Sound operations panicked without initialization: %v", r)
		}
	}()

	sm.Play(CueEnable)
	sm.Play(CueDisable)
	sm.Play(CueDefeat)
	sm.Play(CueComplete)
	sm.HandleEvent(event.GameEvent{Type: event.EventEntityDefeated})
	sm.Cleanup()

	if sm.Initialized() {
		t.Error("Expected manager to stay uninitialized")
	}
}

// TestSoundManagerInitialization verifies sound manager can be initialized and cleaned up
func TestSoundManagerInitialization(t *testing.T) {
	sm := NewSoundManager(nil)

	// Speaker initialization fails without an audio device, the game runs silent
	err := sm.Initialize()
	if err != nil {
		t.Logf("Sound initialization failed (expected in test environment): %v", err)
		return
	}

	// Second initialization should be a no-op
	if err := sm.Initialize(); err != nil {
		t.Errorf("Second initialization should succeed as no-op, got error: %v", err)
	}

	sm.Play(CueComplete)
	sm.Cleanup()

	if sm.Initialized() {
		t.Error("Expected cleanup to reset initialization")
	}
}

func TestCueFor(t *testing.T) {
	tests := []struct {
		name string
		ev   event.GameEvent
		want Cue
	}{
		{"enable", event.GameEvent{Type: event.EventBitChanged, Payload: &event.BitChangedPayload{Index: 2, Enabled: true}}, CueEnable},
		{"disable", event.GameEvent{Type: event.EventBitChanged, Payload: &event.BitChangedPayload{Index: 2}}, CueDisable},
		{"bit without payload", event.GameEvent{Type: event.EventBitChanged}, CueNone},
		{"defeat", event.GameEvent{Type: event.EventEntityDefeated}, CueDefeat},
		{"complete", event.GameEvent{Type: event.EventLevelCompleted, Payload: &event.LevelCompletedPayload{Level: 1}}, CueComplete},
		{"mask", event.GameEvent{Type: event.EventMaskChanged}, CueNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CueFor(tt.ev); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEventTypesMatchCues(t *testing.T) {
	sm := NewSoundManager(nil)
	bus := event.NewBus()
	bus.Register(sm)

	for _, et := range []event.EventType{event.EventBitChanged, event.EventEntityDefeated, event.EventLevelCompleted} {
		if !bus.HasHandlers(et) {
			t.Errorf("Expected sound manager registered for %v", et)
		}
	}
	if bus.HasHandlers(event.EventMaskChanged) {
		t.Error("Expected no handler for mask changes")
	}
}

// drain reads s to completion and returns the sample count and peak amplitude
func drain(s beep.Streamer, limit int) (int, float64) {
	buf := make([][2]float64, 512)
	total := 0
	peak := 0.0
	for total < limit {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			peak = math.Max(peak, math.Abs(buf[i][0]))
		}
		total += n
		if !ok {
			break
		}
	}
	return total, peak
}

func TestCueStreamsAreFiniteAndBounded(t *testing.T) {
	limit := sampleRate.N(10 * time.Second)
	for _, c := range []Cue{CueEnable, CueDisable, CueDefeat, CueComplete} {
		s := streamerFor(c)
		if s == nil {
			t.Fatalf("Expected streamer for %v", c)
		}
		n, peak := drain(s, limit)
		if n == 0 || n >= limit {
			t.Errorf("%v: expected finite non-empty stream, got %d samples", c, n)
		}
		if peak <= 0 || peak > 1.0 {
			t.Errorf("%v: peak amplitude %f outside (0, 1]", c, peak)
		}
	}
	if streamerFor(CueNone) != nil {
		t.Error("Expected no streamer for CueNone")
	}
}

func TestChirpLength(t *testing.T) {
	g := NewChirpGenerator(sampleRate, chirpLowHz, chirpHighHz, chirpDurationMs*time.Millisecond)
	n, _ := drain(g, sampleRate.N(time.Second))
	if want := sampleRate.N(chirpDurationMs * time.Millisecond); n != want {
		t.Errorf("Expected %d samples, got %d", want, n)
	}
}

// TestAudioFrequencies verifies audio frequencies are in audible range
func TestAudioFrequencies(t *testing.T) {
	freqs := append([]float64{chirpLowHz, chirpHighHz, buzzFrequency}, arpeggioNotes...)
	for _, f := range freqs {
		if f < 20 || f > 2000 {
			t.Errorf("Frequency %f outside game audio range", f)
		}
	}
}
