package stats

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/termoscan/thermal-analyzer/pkg/thermal"
)

func mustMatrix(t *testing.T, rows [][]float64) *thermal.Matrix {
	t.Helper()
	m, err := thermal.FromRows(rows)
	if err != nil {
		t.Fatalf("building test matrix: %v", err)
	}
	return m
}

func TestComputeOrdering(t *testing.T) {
	// min <= median <= max must hold for any non-empty matrix.
	rng := rand.New(rand.NewSource(42))
	engine := New()

	for run := 0; run < 50; run++ {
		pix := make([]float64, 64)
		for i := range pix {
			pix[i] = -40 + rng.Float64()*120
		}
		m, err := thermal.NewMatrix(8, 8, pix)
		if err != nil {
			t.Fatal(err)
		}

		st, err := engine.Compute(m)
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		if st.Min > st.Median || st.Median > st.Max {
			t.Fatalf("ordering violated: min=%v median=%v max=%v", st.Min, st.Median, st.Max)
		}
	}
}

func TestComputeExactMedian(t *testing.T) {
	tests := []struct {
		name   string
		rows   [][]float64
		median float64
	}{
		{"odd count", [][]float64{{10, 20, 30}, {40, 50, 60}, {70, 80, 90}}, 50},
		{"even count", [][]float64{{10, 20}, {30, 40}}, 25},
		{"unsorted input", [][]float64{{90, 10, 50}, {30, 70, 20}, {80, 40, 60}}, 50},
		{"all equal", [][]float64{{7, 7}, {7, 7}}, 7},
	}

	engine := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := engine.Compute(mustMatrix(t, tt.rows))
			if err != nil {
				t.Fatalf("Compute failed: %v", err)
			}
			if st.Median != tt.median {
				t.Errorf("Expected median %v, got %v", tt.median, st.Median)
			}
		})
	}
}

func TestComputeSummary(t *testing.T) {
	m := mustMatrix(t, [][]float64{{10, 20, 30}, {40, 50, 60}, {70, 80, 90}})

	st, err := New().Compute(m)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if st.Min != 10 || st.Max != 90 {
		t.Errorf("Expected min/max 10/90, got %v/%v", st.Min, st.Max)
	}
	if st.Mean != 50 {
		t.Errorf("Expected mean 50, got %v", st.Mean)
	}
	if st.Percentiles != nil {
		t.Errorf("Expected no percentiles without bands, got %v", st.Percentiles)
	}
}

func TestComputePercentileBands(t *testing.T) {
	engine, err := NewWithBands([]float64{95, 5})
	if err != nil {
		t.Fatalf("NewWithBands failed: %v", err)
	}

	pix := make([]float64, 100)
	for i := range pix {
		pix[i] = float64(i + 1)
	}
	m, _ := thermal.NewMatrix(10, 10, pix)

	st, err := engine.Compute(m)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(st.Percentiles) != 2 {
		t.Fatalf("Expected 2 percentile bands, got %d", len(st.Percentiles))
	}

	p5, p95 := st.Percentiles[5], st.Percentiles[95]
	if p5 >= p95 {
		t.Errorf("Expected p5 < p95, got %v >= %v", p5, p95)
	}
	if p5 < st.Min || p95 > st.Max {
		t.Errorf("Percentiles %v/%v escape [%v, %v]", p5, p95, st.Min, st.Max)
	}
}

func TestNewWithBandsInvalid(t *testing.T) {
	for _, bands := range [][]float64{{-1}, {101}, {50, 200}} {
		if _, err := NewWithBands(bands); err == nil {
			t.Errorf("Expected error for bands %v", bands)
		}
	}
}

func TestComputeEmpty(t *testing.T) {
	_, err := New().Compute(nil)
	if err == nil {
		t.Fatal("Expected error for nil matrix")
	}
	var invalid *thermal.InvalidInputError
	if !errors.As(err, &invalid) {
		t.Errorf("Expected InvalidInputError, got %T", err)
	}
}

func TestComputeDeterministic(t *testing.T) {
	m := mustMatrix(t, [][]float64{{3.2, -1.5, 12.9}, {7.7, 0.1, 5.5}})
	engine := New()

	first, err := engine.Compute(m)
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Compute(m)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Compute is not deterministic: %+v vs %+v", first, second)
	}
}

func BenchmarkCompute(b *testing.B) {
	pix := make([]float64, 640*512)
	rng := rand.New(rand.NewSource(1))
	for i := range pix {
		pix[i] = rng.Float64() * 60
	}
	m, _ := thermal.NewMatrix(640, 512, pix)
	engine := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Compute(m)
	}
}
