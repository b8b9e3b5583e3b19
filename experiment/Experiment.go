// Package experiment implements functionality for running an
// experiment which fits a world model to recorded transitions.
package experiment

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/samuelfneumann/worldmodel/experiment/tracker"
	"github.com/samuelfneumann/worldmodel/learner"
	"github.com/samuelfneumann/worldmodel/replay"
	"github.com/samuelfneumann/worldmodel/timestep"
	"github.com/samuelfneumann/worldmodel/utils/progressbar"
	"github.com/samuelfneumann/worldmodel/worldmodel"
)

// Config represents a configuration of an experiment
type Config struct {
	Fields  replay.Fields
	Agent   worldmodel.Config
	Learner learner.Config
	Replay  replay.Config

	// Steps is the number of learner steps to take
	Steps int

	// Seed seeds the replay buffer and the agent, overriding the seed
	// in Agent
	Seed uint64
}

// LoadConfig reads a JSON experiment configuration from filename
func LoadConfig(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %v", err)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not decode %v: %v",
			filename, err)
	}
	return c, nil
}

// Validate checks the Config for errors
func (c Config) Validate() error {
	if err := c.Fields.Validate(); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("validate: number of steps must be positive, "+
			"got %v", c.Steps)
	}
	if c.Replay.SampleSize != c.Agent.BatchSize {
		return fmt.Errorf("validate: replay sample size (%v) must equal "+
			"the agent batch size (%v)", c.Replay.SampleSize,
			c.Agent.BatchSize)
	}
	return c.Learner.Validate()
}

// Offline is an experiment that fits a world model to a fixed set of
// transitions. Each step samples a batch from a replay buffer holding
// the transitions and steps the learner on it.
type Offline struct {
	agent   *worldmodel.Agent
	learner *learner.Learner
	buffer  *replay.Buffer

	maxSteps     int
	currentSteps int
	trackers     []tracker.Tracker

	logger   *log.Logger
	progress io.Writer
}

// NewOffline creates and returns a new offline experiment over
// transitions described by c. Losses are tracked by each tracker.
// Progress is displayed on progress if it is non-nil.
func NewOffline(c Config, transitions []timestep.Transition,
	logger *log.Logger, progress io.Writer,
	t ...tracker.Tracker) (*Offline, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newOffline: %v", err)
	}

	// The buffer is filled before the learner creates its VMs so that
	// invalid transitions leave nothing to close
	buffer, err := c.Replay.Create(c.Fields, c.Seed)
	if err != nil {
		return nil, fmt.Errorf("newOffline: could not create replay "+
			"buffer: %v", err)
	}
	for i, transition := range transitions {
		if err := buffer.Add(transition); err != nil {
			return nil, fmt.Errorf("newOffline: transition %d: %w", i, err)
		}
	}

	c.Agent.Seed = c.Seed
	agent, err := worldmodel.New(c.Fields, c.Agent, logger)
	if err != nil {
		return nil, fmt.Errorf("newOffline: could not create agent: %w", err)
	}

	l, err := learner.New(agent, c.Learner)
	if err != nil {
		return nil, fmt.Errorf("newOffline: could not create learner: %v",
			err)
	}

	return &Offline{
		agent:    agent,
		learner:  l,
		buffer:   buffer,
		maxSteps: c.Steps,
		trackers: t,
		logger:   logger,
		progress: progress,
	}, nil
}

// Register registers a tracker.Tracker with an Experiment so that
// losses generated during the experiment can be tracked and saved
func (o *Offline) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// Agent returns the world model fit by the experiment
func (o *Offline) Agent() *worldmodel.Agent {
	return o.agent
}

// Step takes a single learner step. It returns whether the maximum
// number of steps has been reached.
func (o *Offline) Step() (bool, error) {
	if o.currentSteps >= o.maxSteps {
		return true, nil
	}

	batch, err := o.buffer.Sample()
	if err != nil {
		return false, fmt.Errorf("step: %w", err)
	}

	losses, err := o.learner.Step(batch)
	if err != nil {
		return false, fmt.Errorf("step: %w", err)
	}
	o.currentSteps++
	o.track(losses)

	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all steps
func (o *Offline) Run() error {
	o.agent.Train()

	var bar *progressbar.ManualProgressBar
	if o.progress != nil {
		bar = progressbar.NewManualProgressBar(o.progress, 40, o.maxSteps)
	}

	for ended := false; !ended; {
		var err error
		if ended, err = o.Step(); err != nil {
			return fmt.Errorf("run: %w", err)
		}

		if bar != nil {
			bar.Increment()
			bar.Display()
		}
	}
	if bar != nil {
		bar.Close()
	}

	o.agent.Eval()
	return nil
}

// Save saves all the data tracked by the trackers
func (o *Offline) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

// Close releases the resources of the experiment
func (o *Offline) Close() error {
	return o.learner.Close()
}

// track tracks the losses of the current step in each tracker
func (o *Offline) track(l learner.Losses) {
	for _, t := range o.trackers {
		t.Track(o.currentSteps, l)
	}
}
