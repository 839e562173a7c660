package apu

import (
	"testing"

	"famicore/hw/hwdefs"
)

func TestSamplerRate(t *testing.T) {
	tests := []struct {
		tv   hwdefs.TVSystem
		rate int
	}{
		{hwdefs.NTSC, 48000},
		{hwdefs.NTSC, 44100},
		{hwdefs.PAL, 48000},
	}
	for _, tt := range tests {
		t.Run(tt.tv.String(), func(t *testing.T) {
			s := NewSampler(tt.tv, tt.rate)
			if s.maxPeriod != s.minPeriod+1 {
				t.Fatalf("periods %d/%d should be consecutive", s.minPeriod, s.maxPeriod)
			}

			// One second of emulation at equilibrium.
			cycles := int(tt.tv.CyclesPerFrame() * float64(tt.tv.FrameRate()))
			for range cycles {
				s.Tick()
			}
			got := int(s.Samples())
			if diff := got - tt.rate; diff < -100 || diff > 100 {
				t.Errorf("got %d samples in one second, want ~%d", got, tt.rate)
			}
		})
	}
}

func TestSamplerFeedback(t *testing.T) {
	s := NewSampler(hwdefs.NTSC, 48000)
	eq := s.TargetFactor()

	feed := func(queued int) {
		for range statsWindow {
			s.Feedback(queued)
		}
	}

	feed(NominalQueue)
	if got := s.TargetFactor(); got != eq {
		t.Errorf("at nominal queue, target = %d, want equilibrium %d", got, eq)
	}

	// Queue too long: less samples, longer periods.
	feed(2 * NominalQueue)
	if got := s.TargetFactor(); got != maxFactor {
		t.Errorf("with a full queue, target = %d, want %d", got, maxFactor)
	}
	feed(10 * NominalQueue)
	if got := s.TargetFactor(); got != maxFactor {
		t.Errorf("target = %d, should be capped to %d", got, maxFactor)
	}

	// Starving: shortest periods.
	feed(0)
	if got := s.TargetFactor(); got != 0 {
		t.Errorf("with an empty queue, target = %d, want 0", got)
	}

	feed(NominalQueue / 2)
	if got := s.TargetFactor(); got <= 0 || got >= eq {
		t.Errorf("half queue: target = %d, want in (0, %d)", got, eq)
	}
}

func TestSamplerPeriods(t *testing.T) {
	s := NewSampler(hwdefs.NTSC, 48000)
	s.targetFactor = maxFactor

	// Warm up, the very first period is the short one.
	for !s.Tick() {
	}

	for range 3 * (maxFactor + 1) {
		n := 1
		for !s.Tick() {
			n++
		}
		if n != s.maxPeriod {
			t.Fatalf("period = %d, want %d", n, s.maxPeriod)
		}
	}
}
