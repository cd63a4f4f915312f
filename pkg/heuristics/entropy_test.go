package heuristics_test

import (
	"math"
	"testing"

	"github.com/BlackVectorOps/filesentry/pkg/heuristics"
)

func TestCalculateEntropy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    []byte
		expected float64
		epsilon  float64
	}{
		{"Empty", []byte{}, 0.0, 0.001},
		{"Zero Entropy", []byte{0, 0, 0, 0}, 0.0, 0.001},
		{"1 Bit Entropy", []byte{0, 1, 0, 1}, 1.0, 0.001},
		{"Max Entropy (16 bytes)", []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, 4.0, 0.001},
		{"Text Profile", []byte("abcdefghijklmnopqrstuvwxyz"), 4.7, 0.1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := heuristics.CalculateEntropy(tc.input)
			if math.Abs(got-tc.expected) > tc.epsilon {
				t.Errorf("got %f, want %f (±%f)", got, tc.expected, tc.epsilon)
			}
		})
	}
}

func TestEntropyFullByteRange(t *testing.T) {
	t.Parallel()

	// Uniform distribution over all 256 byte values hits the 8-bit ceiling.
	data := make([]byte, 256*4)
	for i := range data {
		data[i] = byte(i % 256)
	}
	got := heuristics.CalculateEntropy(data)
	if math.Abs(got-8.0) > 0.001 {
		t.Errorf("uniform byte distribution: got %f, want 8.0", got)
	}
}

func TestEntropyOfEnglishTextStaysBelowThreshold(t *testing.T) {
	t.Parallel()

	text := []byte("The quick brown fox jumps over the lazy dog. " +
		"Plain English prose repeats letters heavily and never approaches the packing threshold.")
	got := heuristics.CalculateEntropy(text)
	if got >= heuristics.DefaultEntropyThreshold {
		t.Errorf("english text entropy %f should sit below threshold %f", got, heuristics.DefaultEntropyThreshold)
	}
}
