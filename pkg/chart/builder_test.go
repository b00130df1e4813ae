package chart

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

func Test_ChooseMode(t *testing.T) {
	assert.Equal(t, Scatter, ChooseMode([]float64{10, 15, 20}), "sparse runs scatter")
	assert.Equal(t, Line, ChooseMode([]float64{20, 25, 30}), "dense runs connect")
	assert.Equal(t, Line, ChooseMode(nil), "no count column keeps the line")
}

func Test_trailingSpans(t *testing.T) {
	spans := trailingSpans([]float64{100, 250, 600})
	require.Equal(t, []span{{0, 100}, {100, 250}, {250, 600}}, spans)

	// Contiguous, non-overlapping, covering [0, max).
	prev := 0.0
	for _, s := range spans {
		assert.Equal(t, prev, s.x0)
		assert.Greater(t, s.x1, s.x0)
		prev = s.x1
	}
	assert.Equal(t, 600.0, prev)
}

func Test_AddBands_recordsSpans(t *testing.T) {
	b := New(Config{Title: "bands"})
	err := b.AddBands("spread", []float64{100, 250, 600}, []float64{1, 2, 1}, []float64{4, 5, 3})
	require.NoError(t, err)
	assert.Equal(t, []span{{0, 100}, {100, 250}, {250, 600}}, b.bands)

	path := filepath.Join(t.TempDir(), "bands.svg")
	require.NoError(t, b.Save(6*vg.Inch, 3*vg.Inch, path))
	assertNonEmptyFile(t, path)
}

func Test_AddFixedBands_anchorsAtOwnTimestamp(t *testing.T) {
	b := New(Config{})
	err := b.AddFixedBands("spread", []float64{100, 200}, []float64{1, 1}, []float64{2, 2}, 0)
	require.NoError(t, err)
	assert.Equal(t, []span{{100, 100}, {200, 200}}, b.bands)

	b = New(Config{})
	err = b.AddFixedBands("spread", []float64{100, 200}, []float64{1, 1}, []float64{2, 2}, 30)
	require.NoError(t, err)
	assert.Equal(t, []span{{100, 130}, {200, 230}}, b.bands)
}

func Test_AddMarkers_dedup(t *testing.T) {
	b := New(Config{})
	b.AddMarkers([]float64{5, 5, 9}, "policy")
	assert.Len(t, b.markers, 2, "duplicate timestamps collapse")

	b.AddMarkers([]float64{9, 11}, "policy")
	assert.Len(t, b.markers, 3, "dedup holds across calls")
}

func Test_Save_pinsXRange(t *testing.T) {
	b := New(Config{Title: "range", XTicks: ClockTicks{}})
	require.NoError(t, b.AddSeries("s", []float64{120, 300, 600}, []float64{1, 2, 3}, Line))
	b.AddMarkers([]float64{700}, "late") // must not widen the axis

	path := filepath.Join(t.TempDir(), "range.svg")
	require.NoError(t, b.Save(6*vg.Inch, 3*vg.Inch, path))
	assert.Equal(t, 0.0, b.p.X.Min)
	assert.Equal(t, 600.0, b.p.X.Max)
	assertNonEmptyFile(t, path)
}

func Test_Save_emptyChart(t *testing.T) {
	for _, cfg := range []Config{
		{Title: "empty linear"},
		{Title: "empty log", LogY: true},
	} {
		b := New(cfg)
		require.NoError(t, b.AddSeries("s", nil, nil, Line))
		path := filepath.Join(t.TempDir(), "empty.svg")
		require.NoError(t, b.Save(4*vg.Inch, 2*vg.Inch, path), cfg.Title)
		assertNonEmptyFile(t, path)
	}
}

func Test_Save_png(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.svg", "c.png"} {
		b := New(Config{Title: "formats"})
		require.NoError(t, b.AddSeries("s", []float64{0, 1}, []float64{1, 2}, Line))
		path := filepath.Join(dir, name)
		require.NoError(t, b.Save(4*vg.Inch, 2*vg.Inch, path))
		assertNonEmptyFile(t, path)
	}
}

func Test_AddSeries_logDropsNonpositive(t *testing.T) {
	b := New(Config{LogY: true})
	require.NoError(t, b.AddSeries("lat", []float64{0, 300, 600}, []float64{0, -1, 50}, Line))

	// Dropped points still count toward the time range.
	path := filepath.Join(t.TempDir(), "log.svg")
	require.NoError(t, b.Save(4*vg.Inch, 2*vg.Inch, path))
	assert.Equal(t, 600.0, b.p.X.Max)

	_, isLog := b.p.Y.Scale.(plot.LogScale)
	assert.True(t, isLog)
}

func Test_AddSeries_paletteWraps(t *testing.T) {
	b := New(Config{PointShapes: true})
	n := len(seriesColors) + 2
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("s%d", i)
		require.NoError(t, b.AddSeries(name, []float64{0, 1}, []float64{1, 2}, Line))
	}
	assert.Equal(t, n, b.SeriesCount())
	assert.Equal(t, seriesColor(0), seriesColor(len(seriesColors)))
	assert.Equal(t, seriesGlyph(0), seriesGlyph(len(seriesGlyphs)))
}

func Test_AddSeries_lengthMismatch(t *testing.T) {
	b := New(Config{})
	err := b.AddSeries("s", []float64{1, 2}, []float64{1}, Line)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 x values against 1 y values")
}

func Test_AddBars(t *testing.T) {
	b := New(Config{Title: "devices", Divisor: 1e6})
	err := b.AddBars("avg latency", []string{"pmem", "optane"}, []float64{45100, 61800})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bars.png")
	require.NoError(t, b.Save(4*vg.Inch, 2*vg.Inch, path))
	assertNonEmptyFile(t, path)
}

func assertNonEmptyFile(t *testing.T, path string) {
	t.Helper()
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, fi.Size())
}
