package experiment

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/samuelfneumann/worldmodel/timestep"
)

// LoadTransitions loads gob encoded transitions saved by
// SaveTransitions
func LoadTransitions(filename string) ([]timestep.Transition, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadTransitions: could not open data "+
			"file: %v", err)
	}
	defer file.Close()

	var transitions []timestep.Transition
	if err := gob.NewDecoder(file).Decode(&transitions); err != nil {
		return nil, fmt.Errorf("loadTransitions: could not decode "+
			"transitions: %v", err)
	}
	return transitions, nil
}

// SaveTransitions gob encodes transitions to filename
func SaveTransitions(filename string,
	transitions []timestep.Transition) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("saveTransitions: could not create data "+
			"file: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(transitions); err != nil {
		return fmt.Errorf("saveTransitions: could not encode "+
			"transitions: %v", err)
	}
	return nil
}
