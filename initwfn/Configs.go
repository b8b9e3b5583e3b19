package initwfn

import (
	"fmt"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
)

// GlorotUConfig implements a configuration of the Glorot Uniform
// initialization algorithm.
type GlorotUConfig struct {
	Gain float64
}

// NewGlorotU returns a new Glorot Uniform weight initializer
func NewGlorotU(gain float64) (*InitWFn, error) {
	return New(GlorotUConfig{Gain: gain})
}

func (g GlorotUConfig) Type() Type { return GlorotU }
// Create returns the initializer, drawing weights from src if it is
// non-nil
func (g GlorotUConfig) Create(src rand.Source) G.InitWFn {
	if src == nil {
		return G.GlorotU(g.Gain)
	}
	return glorotU(g.Gain, src)
}
func (g GlorotUConfig) Validate() error { return validateGain(g.Gain) }

// GlorotNConfig implements a configuration of the Glorot Normal
// initialization algorithm.
type GlorotNConfig struct {
	Gain float64
}

// NewGlorotN returns a new Glorot Normal weight initializer
func NewGlorotN(gain float64) (*InitWFn, error) {
	return New(GlorotNConfig{Gain: gain})
}

func (g GlorotNConfig) Type() Type { return GlorotN }
func (g GlorotNConfig) Create(src rand.Source) G.InitWFn {
	if src == nil {
		return G.GlorotN(g.Gain)
	}
	return glorotN(g.Gain, src)
}
func (g GlorotNConfig) Validate() error { return validateGain(g.Gain) }

// HeUConfig implements a configuration of the He Uniform
// initialization algorithm.
type HeUConfig struct {
	Gain float64
}

// NewHeU returns a new He Uniform weight initializer
func NewHeU(gain float64) (*InitWFn, error) {
	return New(HeUConfig{Gain: gain})
}

func (h HeUConfig) Type() Type { return HeU }
func (h HeUConfig) Create(src rand.Source) G.InitWFn {
	if src == nil {
		return G.HeU(h.Gain)
	}
	return heU(h.Gain, src)
}
func (h HeUConfig) Validate() error { return validateGain(h.Gain) }

// HeNConfig implements a configuration of the He Normal
// initialization algorithm.
type HeNConfig struct {
	Gain float64
}

// NewHeN returns a new He Normal weight initializer
func NewHeN(gain float64) (*InitWFn, error) {
	return New(HeNConfig{Gain: gain})
}

func (h HeNConfig) Type() Type { return HeN }
func (h HeNConfig) Create(src rand.Source) G.InitWFn {
	if src == nil {
		return G.HeN(h.Gain)
	}
	return heN(h.Gain, src)
}
func (h HeNConfig) Validate() error { return validateGain(h.Gain) }

// ZeroesConfig implements a configuration of a zero weight initializer
type ZeroesConfig struct{}

// NewZeroes returns a new zeroes weight initializer
func NewZeroes() (*InitWFn, error) {
	return New(ZeroesConfig{})
}

func (z ZeroesConfig) Type() Type                   { return Zeroes }
func (z ZeroesConfig) Create(rand.Source) G.InitWFn { return G.Zeroes() }
func (z ZeroesConfig) Validate() error              { return nil }

// OnesConfig implements a configuration of a weight initializer that
// initializes all weights to 1.
type OnesConfig struct{}

// NewOnes returns a new ones weight initializer
func NewOnes() (*InitWFn, error) {
	return New(OnesConfig{})
}

func (o OnesConfig) Type() Type                   { return Ones }
func (o OnesConfig) Create(rand.Source) G.InitWFn { return G.Ones() }
func (o OnesConfig) Validate() error              { return nil }

// ConstantConfig implements a configuration of a weight initializer
// that initializes all weights to a constant value.
type ConstantConfig struct {
	Value float64
}

// NewConstant returns a new constant weight initializer
func NewConstant(value float64) (*InitWFn, error) {
	return New(ConstantConfig{Value: value})
}

func (c ConstantConfig) Type() Type                   { return Constant }
func (c ConstantConfig) Create(rand.Source) G.InitWFn { return G.ValuesOf(c.Value) }
func (c ConstantConfig) Validate() error              { return nil }

// GaussianConfig implements a configuration of a weight initializer
// that draws weights from a Gaussian distribution
type GaussianConfig struct {
	Mean, StdDev float64
}

// NewGaussian returns a new Gaussian weight initializer
func NewGaussian(mean, stddev float64) (*InitWFn, error) {
	return New(GaussianConfig{Mean: mean, StdDev: stddev})
}

func (g GaussianConfig) Type() Type { return Gaussian }
func (g GaussianConfig) Create(src rand.Source) G.InitWFn {
	if src == nil {
		return G.Gaussian(g.Mean, g.StdDev)
	}
	return normal(src, func(...int) (float64, float64) {
		return g.Mean, g.StdDev
	})
}

// Validate checks that the standard deviation is positive
func (g GaussianConfig) Validate() error {
	if g.StdDev <= 0 {
		return fmt.Errorf("standard deviation must be positive: %v",
			g.StdDev)
	}
	return nil
}

// UniformConfig implements a configuration of a weight initializer
// that draws weights from a uniform distribution
type UniformConfig struct {
	Low, High float64
}

// NewUniform returns a new uniform weight initializer
func NewUniform(low, high float64) (*InitWFn, error) {
	return New(UniformConfig{Low: low, High: high})
}

func (u UniformConfig) Type() Type { return Uniform }
func (u UniformConfig) Create(src rand.Source) G.InitWFn {
	if src == nil {
		return G.Uniform(u.Low, u.High)
	}
	return uniform(src, func(...int) (float64, float64) {
		return u.Low, u.High
	})
}

// Validate checks that the support of the distribution is not empty
func (u UniformConfig) Validate() error {
	if u.Low >= u.High {
		return fmt.Errorf("low must be less than high: [%v, %v)", u.Low,
			u.High)
	}
	return nil
}

func validateGain(gain float64) error {
	if gain <= 0 {
		return fmt.Errorf("gain must be positive: %v", gain)
	}
	return nil
}
