package heuristics

import "math"

// DefaultEntropyThreshold is deliberately conservative: ordinary text and
// office documents sit well below it, while packed, compressed or encrypted
// payloads approach the 8.0 ceiling. 7.2 keeps the false-positive rate low
// enough that the signal stays explainable.
const DefaultEntropyThreshold = 7.2

// CalculateEntropy computes base-2 Shannon entropy over the byte-value
// histogram of data. Result is in bits per byte, 0.0 through 8.0.
// A single pass over the data plus a fixed 256-slot table keeps this O(n)
// with no allocation pressure on large samples.
func CalculateEntropy(data []byte) float64 {
	if len(data) == 0 {
		return 0.0
	}

	var freq [256]int
	for _, b := range data {
		freq[b]++
	}

	length := float64(len(data))
	entropy := 0.0
	for _, count := range freq {
		if count == 0 {
			continue
		}
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy
}
