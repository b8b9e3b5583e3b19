package replay

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/worldmodel/timestep"
)

// Config implements a specific configuration of a Buffer
type Config struct {
	SampleSize        int
	MaxReplayCapacity int
	MinReplayCapacity int
}

// Create creates and returns the Buffer with the specified Config for
// transitions laid out by fields.
func (c Config) Create(fields Fields, seed uint64) (*Buffer, error) {
	return New(fields, c.MinReplayCapacity, c.MaxReplayCapacity,
		c.SampleSize, seed)
}

// Batch is a batch of transitions. Each matrix has one row per
// transition. Reward and Done have a single column, and Done holds 1
// for transitions that ended an episode and 0 otherwise.
type Batch struct {
	State     *mat.Dense
	Action    *mat.Dense
	Reward    *mat.Dense
	NextState *mat.Dense
	Done      *mat.Dense
}

// Len returns the number of transitions in the batch
func (b Batch) Len() int {
	if b.State == nil {
		return 0
	}
	r, _ := b.State.Dims()
	return r
}

// Buffer implements an experience replay buffer. Once the buffer is
// full, the oldest transition is overwritten first. Batches are sampled
// uniformly randomly with replacement.
type Buffer struct {
	fields Fields

	stateCache     []float64
	actionCache    []float64
	rewardCache    []float64
	nextStateCache []float64
	doneCache      []float64

	// next is the index the next transition is written to
	next int
	len  int

	minCapacity int
	maxCapacity int
	batchSize   int

	rng *rand.Rand
}

// New creates and returns a new Buffer. The buffer can be sampled
// once it holds minCapacity transitions, holds at most maxCapacity
// transitions, and returns batchSize transitions from each call to
// Sample.
func New(fields Fields, minCapacity, maxCapacity, batchSize int,
	seed uint64) (*Buffer, error) {
	if err := fields.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	if minCapacity <= 0 {
		return nil, fmt.Errorf("new: minCapacity must be > 0")
	}
	if maxCapacity < minCapacity {
		return nil, fmt.Errorf("new: maxCapacity (%v) must be >= "+
			"minCapacity (%v)", maxCapacity, minCapacity)
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("new: batch size must be > 0")
	}

	return &Buffer{
		fields: fields,

		stateCache:     make([]float64, maxCapacity*fields[State]),
		actionCache:    make([]float64, maxCapacity*fields[Action]),
		rewardCache:    make([]float64, maxCapacity*fields[Reward]),
		nextStateCache: make([]float64, maxCapacity*fields[NextState]),
		doneCache:      make([]float64, maxCapacity),

		minCapacity: minCapacity,
		maxCapacity: maxCapacity,
		batchSize:   batchSize,

		rng: rand.New(rand.NewSource(seed)),
	}, nil
}

// Add adds a transition to the buffer
func (b *Buffer) Add(t timestep.Transition) error {
	if err := b.check(t, State, t.State); err != nil {
		return err
	}
	if err := b.check(t, Action, t.Action); err != nil {
		return err
	}
	if err := b.check(t, NextState, t.NextState); err != nil {
		return err
	}

	i := b.next
	copy(b.stateCache[i*b.fields[State]:], t.State)
	copy(b.actionCache[i*b.fields[Action]:], t.Action)
	copy(b.nextStateCache[i*b.fields[NextState]:], t.NextState)
	b.rewardCache[i] = t.Reward
	b.doneCache[i] = 0
	if t.Done {
		b.doneCache[i] = 1
	}

	b.next = (b.next + 1) % b.maxCapacity
	if b.len < b.maxCapacity {
		b.len++
	}
	return nil
}

// check ensures data, the field of t, has the width stored for field
func (b *Buffer) check(t timestep.Transition, field Field,
	data []float64) error {
	if len(data) != b.fields[field] {
		msg := "invalid %v width\n\twant(%v)\n\thave(%v)\nin %v"
		return &ReplayError{
			Op:  "add",
			Err: fmt.Errorf(msg, field, b.fields[field], len(data), t),
		}
	}
	return nil
}

// Sample samples a batch of transitions uniformly randomly from the
// buffer.
func (b *Buffer) Sample() (Batch, error) {
	if b.len == 0 {
		return Batch{}, &ReplayError{Op: "sample", Err: errEmptyCache}
	}
	if b.len < b.minCapacity {
		return Batch{}, &ReplayError{Op: "sample", Err: errInsufficientSamples}
	}

	indices := make([]int, b.batchSize)
	for i := range indices {
		indices[i] = b.rng.Intn(b.len)
	}

	return Batch{
		State:     gather(b.stateCache, indices, b.fields[State]),
		Action:    gather(b.actionCache, indices, b.fields[Action]),
		Reward:    gather(b.rewardCache, indices, b.fields[Reward]),
		NextState: gather(b.nextStateCache, indices, b.fields[NextState]),
		Done:      gather(b.doneCache, indices, 1),
	}, nil
}

// gather returns the rows at indices of the row major cache with
// width columns
func gather(cache []float64, indices []int, width int) *mat.Dense {
	data := make([]float64, 0, len(indices)*width)
	for _, i := range indices {
		data = append(data, cache[i*width:(i+1)*width]...)
	}
	return mat.NewDense(len(indices), width, data)
}

// Len returns the current number of transitions in the buffer
func (b *Buffer) Len() int {
	return b.len
}

// MaxCapacity returns the maximum number of transitions in the buffer
func (b *Buffer) MaxCapacity() int {
	return b.maxCapacity
}

// MinCapacity returns the number of transitions required to be in the
// buffer before the buffer can be sampled
func (b *Buffer) MinCapacity() int {
	return b.minCapacity
}

// BatchSize returns the number of transitions returned by Sample()
func (b *Buffer) BatchSize() int {
	return b.batchSize
}

// Fields returns the layout of transitions in the buffer
func (b *Buffer) Fields() Fields {
	return b.fields
}
