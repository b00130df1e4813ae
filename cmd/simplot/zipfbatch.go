package main

import (
	"context"
	"path/filepath"

	"github.com/go-kit/log/level"
	"gonum.org/v1/plot/vg"

	"github.com/tiersim/simplot/pkg/chart"
	"github.com/tiersim/simplot/pkg/table"
)

// Latency columns carry microseconds; the charts show seconds.
const usPerSecond = 1e6

type zipfBatchParams struct {
	appCSV    string
	policyCSV string
	outputDir string
}

func addZipfBatchParams(cmd commander) *zipfBatchParams {
	params := &zipfBatchParams{}
	cmd.Arg("app-csv", "Path to the application telemetry CSV (now, interval, read_* and write_* columns).").Required().StringVar(&params.appCSV)
	cmd.Arg("policy-csv", "Optional policy movement CSV; its timestamps become vertical event markers.").StringVar(&params.policyCSV)
	cmd.Flag("output-dir", "Directory the charts are written to. Defaults to the working directory.").StringVar(&params.outputDir)
	return params
}

func zipfBatch(ctx context.Context, params *zipfBatchParams) error {
	tbl, err := table.FromFile(params.appCSV)
	if err != nil {
		return err
	}

	var markers []float64
	if params.policyCSV != "" {
		events, err := table.FromFile(params.policyCSV)
		if err != nil {
			return err
		}
		if markers, err = events.Floats("now"); err != nil {
			return err
		}
	}

	for _, op := range []string{"read", "write"} {
		b, err := latencyChart(tbl, markers, op)
		if err != nil {
			return err
		}
		out := filepath.Join(dirOrDot(params.outputDir), "zipf_batch_"+op+".svg")
		if err := b.Save(10*vg.Inch, 5*vg.Inch, out); err != nil {
			return err
		}
		level.Info(logger).Log("msg", "wrote latency chart", "op", op, "path", out)
	}
	return nil
}

// latencyChart builds one operation's percentile chart: avg, p90, p95
// and p99 series over time on a log scale, with an avg-to-max spread
// band underneath and any policy event markers on top. Sparse runs
// (few operations per sample) fall back to scatter points.
func latencyChart(tbl *table.Table, markers []float64, op string) (*chart.Builder, error) {
	now, err := tbl.Floats("now")
	if err != nil {
		return nil, err
	}

	b := chart.New(chart.Config{
		Title:   "Zipf Batch - " + op + " latency",
		XLabel:  "Time (h:m:s)",
		YLabel:  "Latency (s)",
		Divisor: usPerSecond,
		LogY:    true,
		XTicks:  chart.ClockTicks{},
	})

	mode := chart.Line
	if tbl.HasColumn(op + "_total") {
		counts, err := tbl.Floats(op + "_total")
		if err != nil {
			return nil, err
		}
		mode = chart.ChooseMode(counts)
	}

	// Spread band first, so every series stays visible on top of it.
	if tbl.HasColumn(op+"_avg") && tbl.HasColumn(op+"_max") {
		lows, err := tbl.Floats(op + "_avg")
		if err != nil {
			return nil, err
		}
		highs, err := tbl.Floats(op + "_max")
		if err != nil {
			return nil, err
		}
		if tbl.HasColumn("interval") {
			err = b.AddBands(op+" avg to max", now, lows, highs)
		} else {
			err = b.AddFixedBands(op+" avg to max", now, lows, highs, 0)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, col := range []string{op + "_avg", op + "_p90", op + "_p95", op + "_p99"} {
		if !tbl.HasColumn(col) {
			continue
		}
		ys, err := tbl.Floats(col)
		if err != nil {
			return nil, err
		}
		if err := b.AddSeries(col, now, ys, mode); err != nil {
			return nil, err
		}
	}

	b.AddMarkers(markers, "policy")
	return b, nil
}
