// Package floatutils provides utilities for working with floats
package floatutils

// Ones returns a slice of n ones
func Ones(n int) []float64 {
	return Fill(n, 1.0)
}

// Fill returns a slice of n copies of value
func Fill(n int, value float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}
