// Package tracker defines Trackers, which track and save the losses
// of an experiment
package tracker

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/samuelfneumann/worldmodel/learner"
)

// Tracker keeps track of experiment data and saves the data after the
// experiment has finished
type Tracker interface {
	Track(step int, l learner.Losses)
	Save() error
}

// Record is the losses of a single learner step
type Record struct {
	Step int
	learner.Losses
}

// LoadData loads and returns the records saved by a Tracker that gob
// encodes its data
func LoadData(filename string) ([]Record, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadData: could not open data file: %v", err)
	}
	defer file.Close()

	var data []Record
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("loadData: could not decode data: %v", err)
	}
	return data, nil
}
