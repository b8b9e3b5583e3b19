package trackers

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/samuelfneumann/worldmodel/experiment/tracker"
	"github.com/samuelfneumann/worldmodel/learner"
)

// Plot tracks the losses of an experiment and renders them as line
// charts to an HTML page
type Plot struct {
	*Losses
	title string
}

// NewPlot creates and returns a new *Plot Tracker which records the
// losses of every every steps and renders them to filename
func NewPlot(filename, title string, every int) *Plot {
	return &Plot{Losses: NewLosses(filename, every), title: title}
}

// Save renders the tracked losses to an HTML page. Each predictor's
// loss is drawn on its own line. Losses of disabled predictors are not
// drawn.
func (p *Plot) Save() error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: p.title}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "step"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "loss"}),
	)

	steps := make([]string, len(p.records))
	for i, r := range p.records {
		steps[i] = fmt.Sprintf("%d", r.Step)
	}
	line.SetXAxis(steps)

	series := []struct {
		name string
		loss func(learner.Losses) float64
	}{
		{"transition", func(l learner.Losses) float64 { return l.Transition }},
		{"reward", func(l learner.Losses) float64 { return l.Reward }},
		{"done", func(l learner.Losses) float64 { return l.Done }},
	}
	for _, s := range series {
		if items, ok := lineData(p.records, s.loss); ok {
			line.AddSeries(s.name, items)
		}
	}

	page := components.NewPage()
	page.AddCharts(line)

	file, err := os.Create(p.filename)
	if err != nil {
		return fmt.Errorf("save: could not create plot file: %v", err)
	}
	defer file.Close()

	if err := page.Render(file); err != nil {
		return fmt.Errorf("save: could not render plot: %v", err)
	}
	return nil
}

// lineData returns the line chart items of a loss, and whether any
// finite value of the loss was tracked
func lineData(records []tracker.Record,
	loss func(learner.Losses) float64) ([]opts.LineData, bool) {
	items := make([]opts.LineData, 0, len(records))
	tracked := false
	for _, r := range records {
		v := loss(r.Losses)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			// Missing values are drawn as gaps
			items = append(items, opts.LineData{Value: "-"})
			continue
		}
		tracked = true
		items = append(items, opts.LineData{Value: v})
	}
	return items, tracked
}
