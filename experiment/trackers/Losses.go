// Package trackers implements Trackers of the losses of an experiment
package trackers

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/samuelfneumann/worldmodel/experiment/tracker"
	"github.com/samuelfneumann/worldmodel/learner"
)

// Losses tracks the losses of every step in an experiment and gob
// encodes them to a file. The saved data can be read with
// tracker.LoadData.
type Losses struct {
	every    int
	records  []tracker.Record
	filename string
}

// NewLosses creates and returns a new *Losses Tracker which records
// the losses of every every steps
func NewLosses(filename string, every int) *Losses {
	if every < 1 {
		every = 1
	}
	return &Losses{every: every, filename: filename}
}

// Track records the losses of a step
func (l *Losses) Track(step int, losses learner.Losses) {
	if step%l.every == 0 {
		l.records = append(l.records, tracker.Record{Step: step,
			Losses: losses})
	}
}

// Records returns the tracked records
func (l *Losses) Records() []tracker.Record {
	return l.records
}

// Save saves the tracked losses to disk
func (l *Losses) Save() error {
	file, err := os.Create(l.filename)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(l.records); err != nil {
		return fmt.Errorf("save: could not encode losses: %v", err)
	}
	return nil
}
