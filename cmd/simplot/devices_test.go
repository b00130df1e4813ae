package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_devices_summaryAndChart(t *testing.T) {
	csv := "id,total_requests,avg_latency_ns,max_latency_ns,idle_percentage\n" +
		"Intel_Optane_SSD_DC_P4800X,151290,45100,2310000,12.5\n" +
		"Samsung_983_ZET,98700,61800,4470000,33.1\n" +
		"DRAM,1204000,800,41000,2.0\n"

	dir := t.TempDir()
	var buf bytes.Buffer
	ctx := withOutput(context.Background(), &buf)
	params := &devicesParams{
		devicesCSV: writeTempCSV(t, "devices.csv", csv),
		outputDir:  dir,
	}
	require.NoError(t, devices(ctx, params))

	out := buf.String()
	assert.Contains(t, out, "Intel_Optane_SSD_DC_P4800X")
	assert.Contains(t, out, "151,290", "request counts are printed with separators")
	assert.Contains(t, out, "2.31ms", "latencies are printed as durations")

	assertChartFile(t, filepath.Join(dir, "devices.png"))
}
