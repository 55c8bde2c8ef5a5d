package audio

import (
	"math"
	"testing"
)

func TestMix(t *testing.T) {
	tests := []struct {
		name      string
		primary   []float32
		secondary []float32
		want      []float32
	}{
		{
			name:      "equal gain",
			primary:   []float32{0.2, -0.4},
			secondary: []float32{0.4, 0.2},
			want:      []float32{0.3, -0.1},
		},
		{
			name:      "truncates to shorter secondary",
			primary:   []float32{0.2, 0.2, 0.2, 0.2},
			secondary: []float32{0.4, 0.4},
			want:      []float32{0.3, 0.3},
		},
		{
			name:      "truncates to shorter primary",
			primary:   []float32{0.2},
			secondary: []float32{0.4, 0.4, 0.4},
			want:      []float32{0.3},
		},
		{
			name:      "clips both ends",
			primary:   []float32{2, -2, 1.5},
			secondary: []float32{1, -1, 1},
			want:      []float32{1, -1, 1},
		},
		{
			name:    "no secondary",
			primary: []float32{0.7, -0.7},
			want:    []float32{0.7, -0.7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mix(tt.primary, tt.secondary)
			if len(got) != len(tt.want) {
				t.Fatalf("Mix() len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if math.Abs(float64(got[i]-tt.want[i])) > 1e-6 {
					t.Errorf("Mix()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
				if got[i] > 1 || got[i] < -1 {
					t.Errorf("Mix()[%d] = %v outside [-1, 1]", i, got[i])
				}
			}
		})
	}
}

func TestPeak(t *testing.T) {
	if got := Peak([]float32{0.1, -0.6, 0.3}); got != 0.6 {
		t.Errorf("Peak() = %v, want 0.6", got)
	}
	if got := Peak(nil); got != 0 {
		t.Errorf("Peak(nil) = %v, want 0", got)
	}
}
