package experiment

import (
	"bytes"
	"errors"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/worldmodel/experiment/tracker"
	"github.com/samuelfneumann/worldmodel/experiment/trackers"
	"github.com/samuelfneumann/worldmodel/learner"
	"github.com/samuelfneumann/worldmodel/replay"
	"github.com/samuelfneumann/worldmodel/solver"
	"github.com/samuelfneumann/worldmodel/timestep"
	"github.com/samuelfneumann/worldmodel/worldmodel"
)

// transitions returns n transitions of a linear system with 3
// dimensional states and 1 dimensional actions
func transitions(n int, seed uint64) []timestep.Transition {
	rng := rand.New(rand.NewSource(seed))
	out := make([]timestep.Transition, n)
	for i := range out {
		state := []float64{rng.NormFloat64(), rng.NormFloat64(),
			rng.NormFloat64()}
		action := []float64{rng.NormFloat64()}
		next := []float64{state[0] + action[0], 0.5 * state[1], state[2]}
		out[i] = timestep.Transition{
			State:     state,
			Action:    action,
			Reward:    -next[0] * next[0],
			NextState: next,
			Done:      math.Abs(next[0]) > 2,
		}
	}
	return out
}

func testConfig(t *testing.T) Config {
	t.Helper()
	s, err := solver.NewDefaultAdam(0.005)
	if err != nil {
		t.Fatal(err)
	}

	return Config{
		Fields: replay.NewFields(3, 1),
		Agent: worldmodel.Config{
			Device:           worldmodel.CPU,
			BatchSize:        16,
			TransitionLayers: []int{8},
			RewardLayers:     []int{8},
			DoneLayers:       []int{8},
			PredictReward:    true,
			PredictDone:      true,
		},
		Learner: learner.Config{TransitionSolver: s},
		Replay: replay.Config{
			SampleSize:        16,
			MinReplayCapacity: 16,
			MaxReplayCapacity: 1000,
		},
		Steps: 25,
		Seed:  11,
	}
}

func TestOfflineRun(t *testing.T) {
	dir := t.TempDir()
	lossFile := filepath.Join(dir, "losses.bin")
	plotFile := filepath.Join(dir, "losses.html")

	var progress bytes.Buffer
	losses := trackers.NewLosses(lossFile, 5)
	e, err := NewOffline(testConfig(t), transitions(200, 1),
		log.New(io.Discard, "", 0), &progress, losses)
	if err != nil {
		t.Fatal(err)
	}
	e.Register(trackers.NewPlot(plotFile, "test", 1))
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if err := e.Run(); err != nil {
		t.Fatal(err)
	}
	if n := len(losses.Records()); n != 5 {
		t.Errorf("tracked records: want(5) have(%v)", n)
	}
	if !e.Agent().IsEval() {
		t.Error("agent should be in evaluation mode after a run")
	}
	if !strings.Contains(progress.String(), "100.00%") {
		t.Errorf("progress: have(%q)", progress.String())
	}

	if err := e.Save(); err != nil {
		t.Fatal(err)
	}

	records, err := tracker.LoadData(lossFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 5 {
		t.Errorf("records: want(5) have(%v)", len(records))
	}
	for _, r := range records {
		if math.IsNaN(r.Transition) || math.IsNaN(r.Reward) ||
			math.IsNaN(r.Done) {
			t.Errorf("step %v: losses should be tracked: %v", r.Step,
				r.Losses)
		}
	}

	html, err := os.ReadFile(plotFile)
	if err != nil {
		t.Fatal(err)
	}
	for _, series := range []string{"transition", "reward", "done"} {
		if !strings.Contains(string(html), series) {
			t.Errorf("plot missing series %q", series)
		}
	}
}

func TestOfflineInsufficientData(t *testing.T) {
	e, err := NewOffline(testConfig(t), transitions(4, 2),
		log.New(io.Discard, "", 0), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	err = e.Run()
	if !replay.IsInsufficientSamples(err) {
		t.Errorf("run: want insufficient samples have(%v)", err)
	}
}

func TestOfflineInvalidTransition(t *testing.T) {
	data := transitions(20, 4)
	data[7].State = []float64{1, 2}

	e, err := NewOffline(testConfig(t), data, log.New(io.Discard, "", 0),
		nil)
	if e != nil || err == nil {
		t.Fatalf("newOffline: expected error for transition of wrong width")
	}

	var replayErr *replay.ReplayError
	if !errors.As(err, &replayErr) {
		t.Errorf("newOffline: want *replay.ReplayError have(%T: %v)", err,
			err)
	}
	if !strings.Contains(err.Error(), "transition 7") {
		t.Errorf("newOffline: error does not name the transition: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	c := testConfig(t)
	c.Replay.SampleSize = 8
	if err := c.Validate(); err == nil {
		t.Error("validate: expected error for mismatched batch sizes")
	}

	c = testConfig(t)
	c.Agent.Device = 1
	_, err := NewOffline(c, transitions(20, 3), log.New(io.Discard, "", 0),
		nil)
	if !errors.Is(err, worldmodel.ErrDevice) {
		t.Errorf("newOffline: want ErrDevice have(%v)", err)
	}
}

func TestTransitionsFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "transitions.gob")
	want := transitions(10, 4)
	if err := SaveTransitions(filename, want); err != nil {
		t.Fatal(err)
	}

	have, err := LoadTransitions(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(have) != len(want) || have[9].Done != want[9].Done ||
		have[9].NextState[1] != want[9].NextState[1] {
		t.Errorf("load: want(%v) have(%v)", want[9], have[9])
	}

	if _, err := LoadTransitions(filepath.Join(t.TempDir(), "none")); err == nil {
		t.Error("load: expected error for missing file")
	}
}

func TestLoadConfig(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"Fields": {"state": 3, "action": 1, "next_state": 3, "reward": 1},
		"Agent": {"Device": "cpu", "BatchSize": 16, "TransitionLayers": [8],
			"PredictDone": true, "DoneInputs": "StateAction"},
		"Learner": {"TransitionSolver": {"Type": "Adam", "Config":
			{"StepSize": 0.001, "Epsilon": 1e-8, "Beta1": 0.9, "Beta2": 0.999}}},
		"Replay": {"SampleSize": 16, "MinReplayCapacity": 16,
			"MaxReplayCapacity": 100},
		"Steps": 10,
		"Seed": 1
	}`
	if err := os.WriteFile(filename, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig(filename)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.Agent.DoneInputs != worldmodel.StateAction || c.Fields[replay.State] != 3 {
		t.Errorf("load: have(%+v)", c)
	}
}
