// Package tensorutils provides utilities for moving data between gonum
// matrices and gorgonia tensors.
package tensorutils

import (
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// Slice implements a struct that can be used for slicing tensors.
//
// Given a tensor T and a Slice S, T.Slice(..., S, ...) is equivalent to
// T[..., S.start:S.end:S.step, ...]
type Slice struct {
	start, end, step int
}

// Start returns the start index for the tensor slice
func (s Slice) Start() int {
	return s.start
}

// End returns the ending index for the tensor slice
func (s Slice) End() int {
	return s.end
}

// Step returns the step for the tensor slice
func (s Slice) Step() int {
	return s.step
}

// NewSlice returns a new Slice that can be used to slice tensors
func NewSlice(start, stop, step int) Slice {
	return Slice{start, stop, step}
}

// FromDense returns a float64 tensor holding a copy of m with the same
// shape as m.
func FromDense(m *mat.Dense) *tensor.Dense {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		data = append(data, m.RawRowView(i)...)
	}
	return tensor.New(tensor.WithBacking(data), tensor.WithShape(r, c))
}

// ToDense copies a float64 matrix shaped tensor data into a new
// *mat.Dense with r rows and c columns.
func ToDense(data []float64, r, c int) *mat.Dense {
	backing := make([]float64, r*c)
	copy(backing, data)
	return mat.NewDense(r, c, backing)
}
