package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Fatalf("empty mean should be 0, got %v", got)
	}
	if got := Mean([]float64{2, 4, 6}); !almostEqual(got, 4) {
		t.Fatalf("mean should be 4, got %v", got)
	}
}

func TestSampleStdDev(t *testing.T) {
	if got := SampleStdDev([]float64{5}); got != 0 {
		t.Fatalf("single value sample stddev should be 0, got %v", got)
	}
	// Known value: {2, 4, 4, 4, 5, 5, 7, 9} has sample variance 32/7.
	got := SampleStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	want := math.Sqrt(32.0 / 7.0)
	if !almostEqual(got, want) {
		t.Fatalf("sample stddev should be %v, got %v", want, got)
	}
}

func TestPopStdDev(t *testing.T) {
	got := PopStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !almostEqual(got, 2) {
		t.Fatalf("population stddev should be 2, got %v", got)
	}
}

func TestZScore(t *testing.T) {
	if got := ZScore(25, 20, 0); got != 0 {
		t.Fatalf("zero std should give z=0, got %v", got)
	}
	if got := ZScore(25, 20, 2.5); !almostEqual(got, 2) {
		t.Fatalf("z should be 2, got %v", got)
	}
	if got := ZScore(15, 20, 2.5); !almostEqual(got, 2) {
		t.Fatalf("z should be absolute, got %v", got)
	}
}

func TestLinearFit(t *testing.T) {
	slope, intercept := LinearFit([]float64{1, 2, 3, 4, 5})
	if !almostEqual(slope, 1) || !almostEqual(intercept, 1) {
		t.Fatalf("fit should be y=x+1, got slope=%v intercept=%v", slope, intercept)
	}

	slope, intercept = LinearFit([]float64{3, 3, 3})
	if !almostEqual(slope, 0) || !almostEqual(intercept, 3) {
		t.Fatalf("flat fit should be y=3, got slope=%v intercept=%v", slope, intercept)
	}
}

func TestQuadraticFit(t *testing.T) {
	// y = 2x^2 with x = 0..4
	a, b, c := QuadraticFit([]float64{0, 2, 8, 18, 32})
	if !almostEqual(a, 2) || !almostEqual(b, 0) || !almostEqual(c, 0) {
		t.Fatalf("fit should be y=2x^2, got a=%v b=%v c=%v", a, b, c)
	}

	// Fewer than three points fall back to the linear fit.
	a, b, c = QuadraticFit([]float64{1, 3})
	if a != 0 || !almostEqual(b, 2) || !almostEqual(c, 1) {
		t.Fatalf("two points should collapse to linear, got a=%v b=%v c=%v", a, b, c)
	}
}

func TestClamp01(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{7, 1},
	}
	for _, tc := range cases {
		if got := Clamp01(tc.in); got != tc.want {
			t.Fatalf("Clamp01(%v) should be %v, got %v", tc.in, tc.want, got)
		}
	}
}
