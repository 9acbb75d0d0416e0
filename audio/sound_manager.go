package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/lixenwraith/bitswitch/event"
)

const (
	sampleRate              = beep.SampleRate(48000)
	speakerBufferDurationMs = 100

	chirpDurationMs     = 90
	chirpAttackFraction = 0.1
	chirpAmplitude      = 0.2
	chirpLowHz          = 220.0
	chirpHighHz         = 440.0

	buzzDurationMs = 250
	buzzFadeInS    = 0.02
	buzzAmplitude  = 0.2
	buzzFrequency  = 110.0

	arpeggioStepMs    = 110
	arpeggioDecayRate = 6.0
	arpeggioAmplitude = 0.2
)

// A major arpeggio, root to octave
var arpeggioNotes = []float64{220.0, 277.18, 329.63, 440.0}

// Cue is one sound the game can play
type Cue int

const (
	CueNone Cue = iota
	CueEnable
	CueDisable
	CueDefeat
	CueComplete
)

func (c Cue) String() string {
	switch c {
	case CueEnable:
		return "enable"
	case CueDisable:
		return "disable"
	case CueDefeat:
		return "defeat"
	case CueComplete:
		return "complete"
	default:
		return "none"
	}
}

// CueFor maps a controller event to the cue it plays
func CueFor(ev event.GameEvent) Cue {
	switch ev.Type {
	case event.EventBitChanged:
		p, ok := ev.Payload.(*event.BitChangedPayload)
		if !ok {
			return CueNone
		}
		if p.Enabled {
			return CueEnable
		}
		return CueDisable
	case event.EventEntityDefeated:
		return CueDefeat
	case event.EventLevelCompleted:
		return CueComplete
	default:
		return CueNone
	}
}

// streamerFor builds a fresh finite streamer for c, nil for CueNone
func streamerFor(c Cue) beep.Streamer {
	switch c {
	case CueEnable:
		return NewChirpGenerator(sampleRate, chirpLowHz, chirpHighHz, chirpDurationMs*time.Millisecond)
	case CueDisable:
		return NewChirpGenerator(sampleRate, chirpHighHz, chirpLowHz, chirpDurationMs*time.Millisecond)
	case CueDefeat:
		return beep.Take(sampleRate.N(buzzDurationMs*time.Millisecond), NewBuzzGenerator(sampleRate, buzzFrequency))
	case CueComplete:
		return NewArpeggioGenerator(sampleRate, arpeggioNotes, arpeggioStepMs*time.Millisecond)
	default:
		return nil
	}
}

// SoundManager plays controller cues through the speaker
// Every operation is a no-op until Initialize succeeds, the game runs without an audio device
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	logger      *zap.Logger
}

// NewSoundManager creates a new sound manager
func NewSoundManager(logger *zap.Logger) *SoundManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SoundManager{
		mixer:  &beep.Mixer{},
		logger: logger.Named("audio"),
	}
}

// Initialize sets up the audio system
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	err := speaker.Init(sampleRate, sampleRate.N(speakerBufferDurationMs*time.Millisecond))
	if err != nil {
		sm.logger.Warn("audio unavailable", zap.Error(err))
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup stops all sounds
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	// beep has no speaker Close; clearing the mixer silences output
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

// Initialized reports whether cues reach the speaker
func (sm *SoundManager) Initialized() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.initialized
}

// Play queues c on the mixer
func (sm *SoundManager) Play(c Cue) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	s := streamerFor(c)
	if s == nil {
		return
	}
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

func (sm *SoundManager) EventTypes() []event.EventType {
	return []event.EventType{
		event.EventBitChanged,
		event.EventEntityDefeated,
		event.EventLevelCompleted,
	}
}

func (sm *SoundManager) HandleEvent(ev event.GameEvent) {
	sm.Play(CueFor(ev))
}
