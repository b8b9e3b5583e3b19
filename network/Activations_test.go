package network

import (
	"encoding/json"
	"testing"
)

func TestActivationJSON(t *testing.T) {
	type config struct {
		Activation *Activation
	}

	var c config
	if err := json.Unmarshal([]byte(`{"Activation": "tanh"}`), &c); err != nil {
		t.Fatal(err)
	}
	if c.Activation.String() != "tanh" {
		t.Errorf("unmarshal: want(tanh) have(%v)", c.Activation)
	}

	data, err := json.Marshal(config{Softplus()})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"Activation":"softplus"}` {
		t.Errorf("marshal: have(%s)", data)
	}

	if err := json.Unmarshal([]byte(`{"Activation": "gelu"}`), &c); err == nil {
		t.Error("unmarshal: expected error for unknown activation")
	}
}
