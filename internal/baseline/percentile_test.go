package baseline

import "testing"

func TestPercentileEmpty(t *testing.T) {
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile(nil, 50) = %v, want 0", got)
	}
}

func TestPercentileSingle(t *testing.T) {
	for _, p := range []float64{0, 25, 50, 95, 100} {
		if got := percentile([]float64{42}, p); got != 42 {
			t.Errorf("percentile([42], %v) = %v, want 42", p, got)
		}
	}
}

func TestPercentileKnownValues(t *testing.T) {
	data := []float64{10, 20, 30, 40}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{25, 20},
		{50, 30},
		{75, 40},
		{100, 40},
	}
	for _, tt := range tests {
		if got := percentile(data, tt.p); got != tt.want {
			t.Errorf("percentile(%v, %v) = %v, want %v", data, tt.p, got, tt.want)
		}
	}
}

func TestPercentileDoesNotMutateInput(t *testing.T) {
	data := []float64{30, 10, 40, 20}
	percentile(data, 90)
	if data[0] != 30 || data[3] != 20 {
		t.Errorf("input mutated: %v", data)
	}
}

func TestPercentileMonotonic(t *testing.T) {
	data := []float64{5, 1, 9, 3, 7, 2, 8, 4, 6}
	prev := percentile(data, 0)
	for p := 1.0; p <= 100; p++ {
		cur := percentile(data, p)
		if cur < prev {
			t.Fatalf("percentile not monotonic: P%v=%v < P%v=%v", p, cur, p-1, prev)
		}
		prev = cur
	}
}

func TestMean(t *testing.T) {
	if got := mean(nil); got != 0 {
		t.Errorf("mean(nil) = %v, want 0", got)
	}
	if got := mean([]float64{2, 4, 6}); got != 4 {
		t.Errorf("mean = %v, want 4", got)
	}
}
