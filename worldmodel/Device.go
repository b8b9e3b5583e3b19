package worldmodel

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Device identifies the compute device that a world model is placed
// on. Non-negative values are GPU ordinals.
type Device int

// CPU is the host device
const CPU Device = -1

// Validate returns an error if the model cannot be placed on d. Only
// the CPU device is supported by the graph backend.
func (d Device) Validate() error {
	if d == CPU {
		return nil
	}
	if d < CPU {
		return fmt.Errorf("%w: illegal device ordinal %d", ErrDevice, int(d))
	}
	return fmt.Errorf("%w: %v", ErrDevice, d)
}

// String implements the fmt.Stringer interface
func (d Device) String() string {
	if d == CPU {
		return "cpu"
	}
	return fmt.Sprintf("cuda:%d", int(d))
}

// MarshalJSON implements the json.Marshaler interface
func (d Device) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface. Devices
// are written as "cpu" or "cuda:<ordinal>".
func (d *Device) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}

	switch {
	case name == "cpu":
		*d = CPU

	case strings.HasPrefix(name, "cuda:"):
		ordinal, err := strconv.Atoi(strings.TrimPrefix(name, "cuda:"))
		if err != nil || ordinal < 0 {
			return fmt.Errorf("unmarshalJSON: illegal device %q", name)
		}
		*d = Device(ordinal)

	default:
		return fmt.Errorf("unmarshalJSON: illegal device %q", name)
	}
	return nil
}
