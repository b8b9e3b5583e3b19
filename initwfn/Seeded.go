package initwfn

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// fans returns the fan in and fan out of a weight tensor of shape s.
// Dimensions after the first two are treated as a receptive field.
func fans(s ...int) (fanIn, fanOut float64) {
	switch len(s) {
	case 0:
		return 1, 1
	case 1:
		return float64(s[0]), float64(s[0])
	}

	receptive := 1
	for _, dim := range s[2:] {
		receptive *= dim
	}
	return float64(s[0] * receptive), float64(s[1] * receptive)
}

// size returns the number of elements in a tensor of shape s
func size(s ...int) int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// fill returns a backing of dtype dt with n values drawn by draw
func fill(dt tensor.Dtype, n int, draw func() float64) interface{} {
	switch dt {
	case tensor.Float64:
		backing := make([]float64, n)
		for i := range backing {
			backing[i] = draw()
		}
		return backing

	case tensor.Float32:
		backing := make([]float32, n)
		for i := range backing {
			backing[i] = float32(draw())
		}
		return backing
	}
	panic(fmt.Sprintf("initwfn: dtype %v not supported", dt))
}

// uniform returns an InitWFn drawing from src uniformly over the
// bounds returned by bounds for each weight shape
func uniform(src rand.Source,
	bounds func(s ...int) (low, high float64)) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		low, high := bounds(s...)
		dist := distuv.Uniform{Min: low, Max: high, Src: src}
		return fill(dt, size(s...), dist.Rand)
	}
}

// normal returns an InitWFn drawing from src from the Gaussian with
// the moments returned by moments for each weight shape
func normal(src rand.Source,
	moments func(s ...int) (mean, stddev float64)) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		mean, stddev := moments(s...)
		dist := distuv.Normal{Mu: mean, Sigma: stddev, Src: src}
		return fill(dt, size(s...), dist.Rand)
	}
}

func glorotU(gain float64, src rand.Source) G.InitWFn {
	return uniform(src, func(s ...int) (float64, float64) {
		in, out := fans(s...)
		limit := gain * math.Sqrt(6/(in+out))
		return -limit, limit
	})
}

func glorotN(gain float64, src rand.Source) G.InitWFn {
	return normal(src, func(s ...int) (float64, float64) {
		in, out := fans(s...)
		return 0, gain * math.Sqrt(2/(in+out))
	})
}

func heU(gain float64, src rand.Source) G.InitWFn {
	return uniform(src, func(s ...int) (float64, float64) {
		in, _ := fans(s...)
		limit := gain * math.Sqrt(3/in)
		return -limit, limit
	})
}

func heN(gain float64, src rand.Source) G.InitWFn {
	return normal(src, func(s ...int) (float64, float64) {
		in, _ := fans(s...)
		return 0, gain / math.Sqrt(in)
	})
}
