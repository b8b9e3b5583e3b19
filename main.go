// Command worldmodel fits a probabilistic world model to recorded
// transitions.
//
// Usage:
//
//	worldmodel -config cfg.json -data transitions.gob [-plot losses.html]
//		[-losses losses.bin] [-every 10] [-quiet]
//
// The configuration is a JSON encoded experiment.Config and the data
// is a gob encoded []timestep.Transition, as written by
// experiment.SaveTransitions.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/samuelfneumann/worldmodel/experiment"
	"github.com/samuelfneumann/worldmodel/experiment/tracker"
	"github.com/samuelfneumann/worldmodel/experiment/trackers"
)

func main() {
	configFile := flag.String("config", "", "JSON experiment configuration")
	dataFile := flag.String("data", "", "gob encoded transitions")
	plotFile := flag.String("plot", "", "HTML file to plot losses to")
	lossFile := flag.String("losses", "", "file to gob encode losses to")
	every := flag.Int("every", 10, "record losses every this many steps")
	quiet := flag.Bool("quiet", false, "do not display progress")
	flag.Parse()

	if *configFile == "" || *dataFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	runID := uuid.New()
	logger := log.New(os.Stderr, fmt.Sprintf("[%v] ", runID.String()[:8]),
		log.LstdFlags)

	if err := run(*configFile, *dataFile, *plotFile, *lossFile, *every,
		*quiet, runID, logger); err != nil {
		logger.Fatal(err)
	}
}

func run(configFile, dataFile, plotFile, lossFile string, every int,
	quiet bool, runID uuid.UUID, logger *log.Logger) error {
	config, err := experiment.LoadConfig(configFile)
	if err != nil {
		return err
	}

	transitions, err := experiment.LoadTransitions(dataFile)
	if err != nil {
		return err
	}
	logger.Printf("run %v: fitting world model to %d transitions", runID,
		len(transitions))

	var t []tracker.Tracker
	if plotFile != "" {
		t = append(t, trackers.NewPlot(plotFile,
			fmt.Sprintf("World model losses (run %v)", runID), every))
	}
	if lossFile != "" {
		t = append(t, trackers.NewLosses(lossFile, every))
	}

	var progress io.Writer = os.Stdout
	if quiet {
		progress = nil
	}

	e, err := experiment.NewOffline(config, transitions, logger, progress,
		t...)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Run(); err != nil {
		return err
	}
	if err := e.Save(); err != nil {
		return err
	}

	logger.Printf("run %v: done", runID)
	return nil
}
