package main

import (
	"context"
	"path/filepath"

	"github.com/go-kit/log/level"
	"gonum.org/v1/plot/vg"

	"github.com/tiersim/simplot/pkg/chart"
	"github.com/tiersim/simplot/pkg/table"
)

type deviceProfileParams struct {
	profileCSV string
	outputDir  string
}

func addDeviceProfileParams(cmd commander) *deviceProfileParams {
	params := &deviceProfileParams{}
	cmd.Arg("profile-csv", "Path to the device profiling CSV (block_size, blocks, avg_latency_us, op, pattern).").Required().StringVar(&params.profileCSV)
	cmd.Flag("output-dir", "Directory the chart is written to. Defaults to the working directory.").StringVar(&params.outputDir)
	return params
}

func deviceProfile(ctx context.Context, params *deviceProfileParams) error {
	tbl, err := table.FromFile(params.profileCSV)
	if err != nil {
		return err
	}
	b, err := profileChart(tbl)
	if err != nil {
		return err
	}
	out := filepath.Join(dirOrDot(params.outputDir), "device_profile.svg")
	if err := b.Save(8*vg.Inch, 5*vg.Inch, out); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "wrote profile chart", "path", out, "series", b.SeriesCount())
	return nil
}

// profileChart draws measured latency against block size, one series
// per operation and access pattern combination. Block sizes double
// from run to run, so the x axis is logarithmic with byte-size labels.
func profileChart(tbl *table.Table) (*chart.Builder, error) {
	blockSize, err := tbl.Floats("block_size")
	if err != nil {
		return nil, err
	}
	latency, err := tbl.Floats("avg_latency_us")
	if err != nil {
		return nil, err
	}
	blocks, err := tbl.Floats("blocks")
	if err != nil {
		return nil, err
	}
	ops, err := tbl.Strings("op")
	if err != nil {
		return nil, err
	}
	patterns, err := tbl.Strings("pattern")
	if err != nil {
		return nil, err
	}

	b := chart.New(chart.Config{
		Title:       "Device Profile",
		XLabel:      "Block size",
		YLabel:      "Avg latency (us)",
		LogX:        true,
		PointShapes: true,
		XTicks:      chart.ByteTicks{Log: true},
	})
	mode := chart.ChooseMode(blocks)

	type key struct {
		op, pattern string
	}
	var order []key
	groups := make(map[key][]int)
	for i := range blockSize {
		k := key{op: ops[i], pattern: patterns[i]}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	for _, k := range order {
		rows := groups[k]
		xs := make([]float64, len(rows))
		ys := make([]float64, len(rows))
		for j, i := range rows {
			xs[j] = blockSize[i]
			ys[j] = latency[i]
		}
		if err := b.AddSeries(k.op+" "+k.pattern, xs, ys, mode); err != nil {
			return nil, err
		}
	}
	return b, nil
}
