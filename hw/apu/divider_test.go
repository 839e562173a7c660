package apu

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDividerClock(t *testing.T) {
	d := Divider{Period: 2, Limit: 3, From: 1}

	var pulses []bool
	var steps []int
	for range 12 {
		pulses = append(pulses, d.Clock())
		steps = append(steps, d.Step)
	}

	wantPulses := []bool{true, false, false, true, false, false, true, false, false, true, false, false}
	wantSteps := []int{1, 1, 1, 2, 2, 2, 3, 3, 3, 1, 1, 1}
	if diff := cmp.Diff(wantPulses, pulses); diff != "" {
		t.Errorf("pulses mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantSteps, steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
}

func TestDividerClockInverse(t *testing.T) {
	tests := []struct {
		name string
		loop bool
		want []int
	}{
		{"one-shot", false, []int{2, 1, 0, 0, 0}},
		{"loop", true, []int{2, 1, 0, 3, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Divider{Step: 3, Limit: 3, Loop: tt.loop}
			var steps []int
			for range len(tt.want) {
				d.ClockInverse()
				steps = append(steps, d.Step)
			}
			if diff := cmp.Diff(tt.want, steps); diff != "" {
				t.Errorf("steps mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDividerNoLimit(t *testing.T) {
	d := Divider{}
	for range 100 {
		if !d.Clock() {
			t.Fatalf("divider with period 0 must pulse on every clock")
		}
	}
	if d.Step != 100 {
		t.Errorf("Step = %d, want 100", d.Step)
	}
}
