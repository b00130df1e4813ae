package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-kit/log/level"
	"gonum.org/v1/plot/vg"

	"github.com/tiersim/simplot/pkg/chart"
	"github.com/tiersim/simplot/pkg/table"
)

type policyMovementParams struct {
	policyCSV string
	outputDir string
}

func addPolicyMovementParams(cmd commander) *policyMovementParams {
	params := &policyMovementParams{}
	cmd.Arg("policy-csv", "Path to the policy movement CSV (now, from, to, size).").Required().StringVar(&params.policyCSV)
	cmd.Flag("output-dir", "Directory the chart is written to. Defaults to the working directory.").StringVar(&params.outputDir)
	return params
}

func policyMovement(ctx context.Context, params *policyMovementParams) error {
	tbl, err := table.FromFile(params.policyCSV)
	if err != nil {
		return err
	}
	b, err := movementChart(tbl)
	if err != nil {
		return err
	}
	out := filepath.Join(dirOrDot(params.outputDir), "policy_movement.svg")
	if err := b.Save(10*vg.Inch, 5*vg.Inch, out); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "wrote movement chart", "path", out, "series", b.SeriesCount())
	return nil
}

// movementChart draws one series per (from, to) tier pair in first
// appearance order: how many blocks moved along that edge at each
// point of the run, each pair with its own color and point shape.
func movementChart(tbl *table.Table) (*chart.Builder, error) {
	now, err := tbl.Floats("now")
	if err != nil {
		return nil, err
	}
	from, err := tbl.Floats("from")
	if err != nil {
		return nil, err
	}
	to, err := tbl.Floats("to")
	if err != nil {
		return nil, err
	}
	size, err := tbl.Floats("size")
	if err != nil {
		return nil, err
	}

	b := chart.New(chart.Config{
		Title:       "Policy Movement",
		XLabel:      "Time (h:m:s)",
		YLabel:      "Number of blocks moved",
		PointShapes: true,
		XTicks:      chart.ClockTicks{},
	})
	mode := chart.ChooseMode(size)

	type pair struct {
		from, to float64
	}
	var order []pair
	groups := make(map[pair][]int)
	for i := range now {
		p := pair{from: from[i], to: to[i]}
		if _, ok := groups[p]; !ok {
			order = append(order, p)
		}
		groups[p] = append(groups[p], i)
	}

	for _, p := range order {
		rows := groups[p]
		xs := make([]float64, len(rows))
		ys := make([]float64, len(rows))
		for j, i := range rows {
			xs[j] = now[i]
			ys[j] = size[i]
		}
		name := fmt.Sprintf("%g->%g", p.from, p.to)
		if err := b.AddSeries(name, xs, ys, mode); err != nil {
			return nil, err
		}
	}
	return b, nil
}
