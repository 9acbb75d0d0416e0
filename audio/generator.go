package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// ChirpGenerator sweeps a sine from one frequency to another over a fixed length
// Rising for a channel switching on, falling for off
type ChirpGenerator struct {
	sr       beep.SampleRate
	from, to float64
	length   int
	pos      int
	phase    float64
}

// NewChirpGenerator creates a sweep of the given duration
func NewChirpGenerator(sr beep.SampleRate, from, to float64, d time.Duration) *ChirpGenerator {
	return &ChirpGenerator{
		sr:     sr,
		from:   from,
		to:     to,
		length: sr.N(d),
	}
}

func (g *ChirpGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	if g.pos >= g.length {
		return 0, false
	}
	for i := range samples {
		if g.pos >= g.length {
			return i, true
		}
		progress := float64(g.pos) / float64(g.length)
		freq := g.from + (g.to-g.from)*progress

		// Phase accumulates so the sweep has no clicks
		g.phase += 2 * math.Pi * freq / float64(g.sr)

		// Short attack, linear release
		envelope := math.Min(progress/chirpAttackFraction, 1.0) * (1 - progress)
		sample := chirpAmplitude * envelope * math.Sin(g.phase)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ChirpGenerator) Err() error {
	return nil
}

// BuzzGenerator generates a low-pitch buzz sound
type BuzzGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

// NewBuzzGenerator creates a buzz sound generator
func NewBuzzGenerator(sr beep.SampleRate, freq float64) *BuzzGenerator {
	return &BuzzGenerator{
		sr:   sr,
		freq: freq,
	}
}

func (g *BuzzGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// Odd and even harmonics for a harsh tone
		sample := 0.0
		sample += 0.3 * math.Sin(2*math.Pi*g.freq*t)
		sample += 0.15 * math.Sin(2*math.Pi*g.freq*2*t)
		sample += 0.075 * math.Sin(2*math.Pi*g.freq*3*t)

		envelope := math.Min(t/buzzFadeInS, 1.0)
		sample *= envelope * buzzAmplitude

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BuzzGenerator) Err() error {
	return nil
}

// ArpeggioGenerator plays a fixed note sequence, one step per note
type ArpeggioGenerator struct {
	sr    beep.SampleRate
	notes []float64
	step  int
	pos   int
}

// NewArpeggioGenerator creates an arpeggio over notes with d per note
func NewArpeggioGenerator(sr beep.SampleRate, notes []float64, d time.Duration) *ArpeggioGenerator {
	return &ArpeggioGenerator{
		sr:    sr,
		notes: notes,
		step:  sr.N(d),
	}
}

func (g *ArpeggioGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	total := g.step * len(g.notes)
	if g.pos >= total {
		return 0, false
	}
	for i := range samples {
		if g.pos >= total {
			return i, true
		}
		note := g.notes[g.pos/g.step]
		inStep := g.pos % g.step
		t := float64(inStep) / float64(g.sr)

		// Each note decays on its own
		envelope := math.Exp(-t * arpeggioDecayRate)
		sample := arpeggioAmplitude * envelope * math.Sin(2*math.Pi*note*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ArpeggioGenerator) Err() error {
	return nil
}
