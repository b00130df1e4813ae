package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/plot/vg"

	"github.com/tiersim/simplot/pkg/chart"
	"github.com/tiersim/simplot/pkg/table"
)

type devicesParams struct {
	devicesCSV string
	outputDir  string
}

func addDevicesParams(cmd commander) *devicesParams {
	params := &devicesParams{}
	cmd.Arg("devices-csv", "Path to the per-device counters CSV (id, total_requests, avg_latency_ns, max_latency_ns, idle_percentage).").Required().StringVar(&params.devicesCSV)
	cmd.Flag("output-dir", "Directory the chart is written to. Defaults to the working directory.").StringVar(&params.outputDir)
	return params
}

// devices prints a per-device summary table and renders the average
// latency bar chart.
func devices(ctx context.Context, params *devicesParams) error {
	tbl, err := table.FromFile(params.devicesCSV)
	if err != nil {
		return err
	}
	ids, err := tbl.Strings("id")
	if err != nil {
		return err
	}
	requests, err := tbl.Floats("total_requests")
	if err != nil {
		return err
	}
	avgNs, err := tbl.Floats("avg_latency_ns")
	if err != nil {
		return err
	}
	maxNs, err := tbl.Floats("max_latency_ns")
	if err != nil {
		return err
	}
	idle, err := tbl.Floats("idle_percentage")
	if err != nil {
		return err
	}

	out := tablewriter.NewWriter(output(ctx))
	out.SetHeader([]string{"Device", "Requests", "Avg Latency", "Max Latency", "Idle"})
	for i, id := range ids {
		out.Append([]string{
			id,
			humanize.Comma(int64(requests[i])),
			time.Duration(avgNs[i]).String(),
			time.Duration(maxNs[i]).String(),
			fmt.Sprintf("%.1f%%", idle[i]),
		})
	}
	out.Render()

	b := chart.New(chart.Config{
		Title:   "Device average latency",
		YLabel:  "Avg latency (ms)",
		Divisor: 1e6, // ns to ms
	})
	if err := b.AddBars("avg latency", ids, avgNs); err != nil {
		return err
	}
	outPath := filepath.Join(dirOrDot(params.outputDir), "devices.png")
	if err := b.Save(8*vg.Inch, 4*vg.Inch, outPath); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "wrote device chart", "path", outPath, "devices", len(ids))
	return nil
}
