// Package matutils implements utility function for working with mat.Matrix
// structs
package matutils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Format formats a matrix for printing
func Format(X mat.Matrix) string {
	fa := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("%v", fa)
}

// HStack concatenates matrices with the same number of rows along the
// column dimension and returns the result in row major order. The
// matrices must all have r rows, which is not checked.
func HStack(r int, matrices ...*mat.Dense) []float64 {
	cols := 0
	for _, m := range matrices {
		_, c := m.Dims()
		cols += c
	}

	data := make([]float64, 0, r*cols)
	for i := 0; i < r; i++ {
		for _, m := range matrices {
			data = append(data, m.RawRowView(i)...)
		}
	}
	return data
}

// Exp returns a new matrix holding the elementwise exponential of m
func Exp(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, m)
	return out
}

// Columns returns a copy of the columns [from, to) of m
func Columns(m *mat.Dense, from, to int) *mat.Dense {
	r, _ := m.Dims()
	return mat.DenseCopyOf(m.Slice(0, r, from, to))
}
