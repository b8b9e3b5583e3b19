package matutils

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestHStack(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	b := mat.NewDense(2, 1, []float64{5, 6})

	want := []float64{1, 2, 5, 3, 4, 6}
	have := HStack(2, a, b)
	for i := range want {
		if have[i] != want[i] {
			t.Fatalf("hstack: want(%v) have(%v)", want, have)
		}
	}
}

func TestColumnsAndExp(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{0, 1, 2, 3, 4, 5})

	cols := Columns(m, 1, 3)
	if r, c := cols.Dims(); r != 2 || c != 2 || cols.At(1, 0) != 4 {
		t.Errorf("columns: have(%v)", Format(cols))
	}
	cols.Set(0, 0, 100)
	if m.At(0, 1) != 1 {
		t.Error("columns should copy")
	}

	if e := Exp(m); math.Abs(e.At(0, 1)-math.E) > 1e-12 || e.At(0, 0) != 1 {
		t.Errorf("exp: have(%v)", Format(e))
	}
}
