package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/worldmodel/experiment"
	"github.com/samuelfneumann/worldmodel/experiment/tracker"
	"github.com/samuelfneumann/worldmodel/timestep"
)

const config = `{
	"Fields": {"state": 2, "action": 1, "next_state": 2, "reward": 1},
	"Agent": {"Device": "cpu", "BatchSize": 8, "TransitionLayers": [4],
		"RewardLayers": [4], "PredictReward": true},
	"Learner": {"TransitionSolver": {"Type": "Adam", "Config":
		{"StepSize": 0.001, "Epsilon": 1e-8, "Beta1": 0.9, "Beta2": 0.999}}},
	"Replay": {"SampleSize": 8, "MinReplayCapacity": 8,
		"MaxReplayCapacity": 100},
	"Steps": 10,
	"Seed": 3
}`

func TestRun(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.json")
	dataFile := filepath.Join(dir, "transitions.gob")
	plotFile := filepath.Join(dir, "losses.html")
	lossFile := filepath.Join(dir, "losses.bin")

	if err := os.WriteFile(configFile, []byte(config), 0o600); err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(1))
	transitions := make([]timestep.Transition, 32)
	for i := range transitions {
		state := []float64{rng.NormFloat64(), rng.NormFloat64()}
		action := []float64{rng.NormFloat64()}
		transitions[i] = timestep.Transition{
			State:     state,
			Action:    action,
			Reward:    state[0],
			NextState: []float64{state[0] + action[0], state[1]},
		}
	}
	if err := experiment.SaveTransitions(dataFile, transitions); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)
	runID := uuid.New()
	if err := run(configFile, dataFile, plotFile, lossFile, 5, true, runID,
		logger); err != nil {
		t.Fatal(err)
	}

	records, err := tracker.LoadData(lossFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[1].Step != 10 {
		t.Errorf("records: want(2 ending at step 10) have(%+v)", records)
	}

	if _, err := os.Stat(plotFile); err != nil {
		t.Errorf("plot: %v", err)
	}
	if !strings.Contains(logs.String(), runID.String()) {
		t.Errorf("logs do not mention run %v:\n%v", runID, logs.String())
	}
}

func TestRunMissingData(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.json")
	if err := os.WriteFile(configFile, []byte(config), 0o600); err != nil {
		t.Fatal(err)
	}

	logger := log.New(&bytes.Buffer{}, "", 0)
	err := run(configFile, filepath.Join(dir, "missing.gob"), "", "", 1,
		true, uuid.New(), logger)
	if err == nil {
		t.Error("run: expected error for missing transitions file")
	}
}
