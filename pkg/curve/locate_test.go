package curve

import (
	"math"
	"testing"
)

func TestLocate(t *testing.T) {
	times := []float64{0, 0.5, 1, 2}

	tests := []struct {
		name   string
		t      float64
		want   int
		wantOK bool
	}{
		{"first keyframe", 0, 0, true},
		{"inside first segment", 0.25, 0, true},
		{"exact interior keyframe", 0.5, 1, true},
		{"inside middle segment", 0.75, 1, true},
		{"exact keyframe before last", 1, 2, true},
		{"just before end", 1.999, 2, true},
		{"exact last keyframe", 2, -1, false},
		{"past end", 3, -1, false},
		{"before start", -0.1, -1, false},
		{"nan", math.NaN(), -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Locate(times, tt.t)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Locate(%v) = (%d, %v), want (%d, %v)", tt.t, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLocate_Degenerate(t *testing.T) {
	if _, ok := Locate(nil, 0); ok {
		t.Error("Locate should report false for an empty slice")
	}
	if _, ok := Locate([]float64{1}, 1); ok {
		t.Error("Locate should report false for a single time")
	}
}

func TestLocate_Bracket(t *testing.T) {
	times := []float64{0, 0.1, 0.35, 0.4, 1.25, 2, 2.5, 4}

	for q := 0.0; q < 4; q += 0.05 {
		i, ok := Locate(times, q)
		if !ok {
			t.Fatalf("Locate(%v) reported not found", q)
		}
		if !(times[i] <= q && q < times[i+1]) {
			t.Errorf("Locate(%v) = %d, bracket [%v, %v) does not hold", q, i, times[i], times[i+1])
		}
	}
}
