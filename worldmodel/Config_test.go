package worldmodel

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/samuelfneumann/worldmodel/initwfn"
)

func TestConfigJSON(t *testing.T) {
	data := []byte(`{
		"Device": "cpu",
		"BatchSize": 32,
		"TransitionLayers": [64, 64],
		"RewardLayers": [32],
		"DoneLayers": [],
		"Activation": "tanh",
		"BatchNorm": true,
		"Dropout": 0.1,
		"PredictReward": true,
		"RewardInputs": "StateAction",
		"InitWFn": {"Type": "HeN", "Config": {"Gain": 1}},
		"Seed": 3
	}`)

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatal(err)
	}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}

	if c.Device != CPU {
		t.Errorf("device: want(cpu) have(%v)", c.Device)
	}
	if c.Activation.String() != "tanh" {
		t.Errorf("activation: want(tanh) have(%v)", c.Activation)
	}
	if c.InitWFn.Type != initwfn.HeN {
		t.Errorf("initwfn: want(HeN) have(%v)", c.InitWFn.Type)
	}

	c = c.WithDefaults()
	if c.RewardInputs != StateAction {
		t.Errorf("reward inputs: want(%v) have(%v)", StateAction,
			c.RewardInputs)
	}
	if c.DoneInputs != StateActionNextState {
		t.Errorf("done inputs: want(%v) have(%v)", StateActionNextState,
			c.DoneInputs)
	}
}

func TestWithDefaults(t *testing.T) {
	c := Config{Device: CPU, BatchSize: 1}.WithDefaults()

	if c.Activation == nil || c.Activation.String() != "relu" {
		t.Errorf("activation: want(relu) have(%v)", c.Activation)
	}
	if c.InitWFn == nil || c.InitWFn.Type != initwfn.GlorotU {
		t.Errorf("initwfn: want(GlorotU) have(%v)", c.InitWFn)
	}
}

func TestDevice(t *testing.T) {
	if err := CPU.Validate(); err != nil {
		t.Errorf("cpu: %v", err)
	}
	for _, d := range []Device{0, 3, -2} {
		if err := d.Validate(); !errors.Is(err, ErrDevice) {
			t.Errorf("%v: want ErrDevice have(%v)", d, err)
		}
	}

	var d Device
	if err := json.Unmarshal([]byte(`"cuda:2"`), &d); err != nil {
		t.Fatal(err)
	}
	if d != 2 || d.String() != "cuda:2" {
		t.Errorf("unmarshal: want(cuda:2) have(%v)", d)
	}
	if err := json.Unmarshal([]byte(`"tpu"`), &d); err == nil {
		t.Error("unmarshal: expected error for unknown device")
	}
}
