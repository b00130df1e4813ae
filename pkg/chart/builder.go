// Package chart assembles the benchmark telemetry charts: metric
// series over time, translucent spread bands, vertical event markers,
// and clock or byte-size axis labels, rendered to SVG or PNG.
package chart

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Mode selects how a series is drawn.
type Mode int

const (
	// Line connects consecutive samples.
	Line Mode = iota
	// Scatter draws unconnected points, used for sparse runs.
	Scatter
)

// scatterThreshold is the median sample count below which ChooseMode
// prefers unconnected points.
const scatterThreshold = 20

// ChooseMode returns Scatter when the median of the designated sample
// count column is below scatterThreshold, Line otherwise. Charts with
// no count column keep Line.
func ChooseMode(counts []float64) Mode {
	if len(counts) == 0 {
		return Line
	}
	if median(counts) < scatterThreshold {
		return Scatter
	}
	return Line
}

func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// Config carries the per-chart fixed choices.
type Config struct {
	Title  string
	XLabel string
	YLabel string

	// Divisor rescales y values before plotting, e.g. 1e6 to turn
	// microseconds into seconds. Zero means no rescaling.
	Divisor float64

	LogX bool
	LogY bool

	// PointShapes gives every series a glyph from the shape palette on
	// top of its color. Used by charts without spread bands.
	PointShapes bool

	// XTicks overrides the x tick marker (ClockTicks, ByteTicks).
	XTicks plot.Ticker
}

// Builder assembles one chart: any number of series, optional spread
// bands, optional event markers, then a single Save.
type Builder struct {
	cfg    Config
	p      *plot.Plot
	legend plot.Legend

	series    int // palette cursor
	bands     []span
	markers   []marker
	markerSet map[float64]struct{}
	nominal   bool

	maxX float64
}

type span struct {
	x0, x1 float64
}

type marker struct {
	x     float64
	label string
}

// New returns a Builder for one chart.
func New(cfg Config) *Builder {
	if cfg.Divisor == 0 {
		cfg.Divisor = 1
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XLabel
	p.Y.Label.Text = cfg.YLabel
	if cfg.XTicks != nil {
		p.X.Tick.Marker = cfg.XTicks
	}
	if cfg.LogX {
		p.X.Scale = plot.LogScale{}
		if cfg.XTicks == nil {
			p.X.Tick.Marker = plot.LogTicks{Prec: -1}
		}
	}
	if cfg.LogY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	grid := plotter.NewGrid()
	grid.Horizontal.Color = color.Gray{Y: 210}
	grid.Vertical.Width = 0
	p.Add(grid)

	// The legend is drawn manually by Save, outside the plot area.
	legend := plot.NewLegend()
	legend.Top = true
	legend.Padding = vg.Millimeter
	legend.TextStyle.Font.Size = vg.Points(10)

	return &Builder{
		cfg:       cfg,
		p:         p,
		legend:    legend,
		markerSet: make(map[float64]struct{}),
	}
}

// Plot exposes the underlying plot for direct adjustments.
func (b *Builder) Plot() *plot.Plot { return b.p }

// SeriesCount returns how many series and bands were added so far.
func (b *Builder) SeriesCount() int { return b.series }

// AddSeries plots one named series. Series are layered in call order,
// later ones on top. Color (and, with Config.PointShapes, glyph shape)
// comes from the fixed palette by position, wrapping when there are
// more series than palette entries. On log-y charts nonpositive values
// are dropped point-wise; an empty series still renders an empty
// chart.
func (b *Builder) AddSeries(name string, xs, ys []float64, mode Mode) error {
	if len(xs) != len(ys) {
		return errors.Errorf("series %s: %d x values against %d y values", name, len(xs), len(ys))
	}
	idx := b.series
	b.series++

	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		b.sawX(xs[i])
		y := ys[i] / b.cfg.Divisor
		if b.cfg.LogY && y <= 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: y})
	}

	if mode == Scatter {
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return errors.Wrapf(err, "scatter %s", name)
		}
		s.Color = seriesColor(idx)
		if b.cfg.PointShapes {
			s.Shape = seriesGlyph(idx)
		}
		b.p.Add(s)
		b.legend.Add(name, s)
		return nil
	}

	if b.cfg.PointShapes {
		l, s, err := plotter.NewLinePoints(pts)
		if err != nil {
			return errors.Wrapf(err, "line points %s", name)
		}
		l.Color = seriesColor(idx)
		l.Width = vg.Points(1)
		s.Color = seriesColor(idx)
		s.Shape = seriesGlyph(idx)
		b.p.Add(l, s)
		b.legend.Add(name, l, s)
		return nil
	}

	l, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrapf(err, "line %s", name)
	}
	l.Color = seriesColor(idx)
	l.Width = vg.Points(1)
	b.p.Add(l)
	b.legend.Add(name, l)
	return nil
}

// AddBands draws one translucent rectangle per sample, from lows[i] to
// highs[i] vertically. Horizontally each band runs from the previous
// sample's timestamp to its own, the first one from zero: a band shows
// the spread during the interval that just elapsed, so it sits at the
// trailing edge of its sample. Over sorted timestamps the bands are
// contiguous, non-overlapping, and cover [0, max).
func (b *Builder) AddBands(name string, xs, lows, highs []float64) error {
	return b.addBands(name, trailingSpans(xs), lows, highs)
}

// AddFixedBands draws the same spread rectangles for tables without an
// interval column: each band is anchored at its own sample's timestamp
// and is width wide. Zero width collapses bands to vertical slivers.
func (b *Builder) AddFixedBands(name string, xs, lows, highs []float64, width float64) error {
	spans := make([]span, len(xs))
	for i, x := range xs {
		spans[i] = span{x0: x, x1: x + width}
	}
	return b.addBands(name, spans, lows, highs)
}

// trailingSpans chains [prev, x] windows over sorted timestamps,
// starting at zero.
func trailingSpans(xs []float64) []span {
	spans := make([]span, len(xs))
	prev := 0.0
	for i, x := range xs {
		spans[i] = span{x0: prev, x1: x}
		prev = x
	}
	return spans
}

func (b *Builder) addBands(name string, spans []span, lows, highs []float64) error {
	if len(lows) != len(spans) || len(highs) != len(spans) {
		return errors.Errorf("bands %s: %d spans against %d low and %d high values",
			name, len(spans), len(lows), len(highs))
	}
	idx := b.series
	b.series++
	fill := bandColor(idx)

	var first *plotter.Polygon
	ps := make([]plot.Plotter, 0, len(spans))
	for i, sp := range spans {
		lo := lows[i] / b.cfg.Divisor
		hi := highs[i] / b.cfg.Divisor
		if b.cfg.LogY && (lo <= 0 || hi <= 0) {
			continue
		}
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: sp.x0, Y: lo},
			{X: sp.x1, Y: lo},
			{X: sp.x1, Y: hi},
			{X: sp.x0, Y: hi},
		})
		if err != nil {
			return errors.Wrapf(err, "band %s sample %d", name, i)
		}
		poly.Color = fill
		poly.LineStyle.Width = 0
		if first == nil {
			first = poly
		}
		ps = append(ps, poly)
		b.sawX(sp.x0)
		b.sawX(sp.x1)
		b.bands = append(b.bands, sp)
	}
	b.p.Add(ps...)
	if first != nil {
		b.legend.Add(name, first)
	}
	return nil
}

// AddBars draws one bar per label and turns the x axis nominal. Used
// by the per-device summary chart.
func (b *Builder) AddBars(name string, labels []string, values []float64) error {
	if len(labels) != len(values) {
		return errors.Errorf("bars %s: %d labels against %d values", name, len(labels), len(values))
	}
	if len(labels) == 0 {
		return nil
	}
	vals := make(plotter.Values, len(values))
	for i, v := range values {
		vals[i] = v / b.cfg.Divisor
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(20))
	if err != nil {
		return errors.Wrapf(err, "bars %s", name)
	}
	idx := b.series
	b.series++
	bars.Color = seriesColor(idx)
	bars.LineStyle.Width = 0
	b.p.Add(bars)
	b.legend.Add(name, bars)
	b.p.NominalX(labels...)
	b.nominal = true
	return nil
}

// AddMarkers records one full-height vertical line per unique x plus a
// small label at the top of the plot area. Duplicate timestamps
// collapse to a single line. The lines are materialized at Save time
// so they span the final y range whatever order the chart was
// assembled in, and they never widen the x axis.
func (b *Builder) AddMarkers(xs []float64, label string) {
	for _, x := range xs {
		if _, seen := b.markerSet[x]; seen {
			continue
		}
		b.markerSet[x] = struct{}{}
		b.markers = append(b.markers, marker{x: x, label: label})
	}
}

func (b *Builder) drawMarkers() error {
	ymin, ymax := b.p.Y.Min, b.p.Y.Max
	for _, m := range b.markers {
		line, err := plotter.NewLine(plotter.XYs{{X: m.x, Y: ymin}, {X: m.x, Y: ymax}})
		if err != nil {
			return errors.Wrapf(err, "marker at %v", m.x)
		}
		line.Color = color.Gray{Y: 110}
		line.Width = vg.Points(0.75)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		b.p.Add(line)

		labels, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    plotter.XYs{{X: m.x, Y: ymax}},
			Labels: []string{m.label},
		})
		if err != nil {
			return errors.Wrapf(err, "marker label at %v", m.x)
		}
		labels.TextStyle[0].Font.Size = vg.Points(7)
		labels.TextStyle[0].XAlign = text.XCenter
		labels.TextStyle[0].YAlign = text.YBottom
		b.p.Add(labels)
	}
	return nil
}

// Save renders the chart to path. The format comes from the file
// extension ("chart.svg", "chart.png"). The x axis of a time chart is
// pinned to [0, max timestamp]; the legend is drawn outside the plot
// area on the right.
func (b *Builder) Save(w, h vg.Length, path string) error {
	b.sane()
	if err := b.drawMarkers(); err != nil {
		return err
	}
	// Markers may have pushed the x axis past the data; pin it back.
	// Log and nominal x axes keep their own ranges.
	if !b.cfg.LogX && !b.nominal {
		b.p.X.Min = 0
		b.p.X.Max = b.maxX
		if b.p.X.Max <= b.p.X.Min {
			b.p.X.Max = b.p.X.Min + 1
		}
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		return errors.Errorf("no image format in path %q", path)
	}
	c, err := draw.NewFormattedCanvas(w, h, format)
	if err != nil {
		return errors.Wrapf(err, "canvas for %q", format)
	}

	dc := draw.New(c)
	r := b.legend.Rectangle(dc)
	legendWidth := r.Max.X - r.Min.X
	b.legend.YOffs = -b.p.Title.TextStyle.FontExtents().Height
	b.legend.Draw(dc)
	dc = draw.Crop(dc, 0, -legendWidth-vg.Millimeter, 0, 0)
	b.p.Draw(dc)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create image file")
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

func (b *Builder) sawX(x float64) {
	if x > b.maxX {
		b.maxX = x
	}
}

// sane gives degenerate charts drawable ranges: a table with no rows
// still produces an (empty) image, and a log axis never sees values
// it cannot place.
func (b *Builder) sane() {
	if math.IsInf(b.p.Y.Min, 0) || math.IsInf(b.p.Y.Max, 0) {
		if b.cfg.LogY {
			b.p.Y.Min, b.p.Y.Max = 1, 10
		} else {
			b.p.Y.Min, b.p.Y.Max = 0, 1
		}
	}
	if math.IsInf(b.p.X.Min, 0) || math.IsInf(b.p.X.Max, 0) {
		if b.cfg.LogX {
			b.p.X.Min, b.p.X.Max = 1, 10
		} else {
			b.p.X.Min, b.p.X.Max = 0, 1
		}
	}
	if b.cfg.LogY && b.p.Y.Min == b.p.Y.Max {
		b.p.Y.Min /= 2
		b.p.Y.Max *= 2
	}
	if b.cfg.LogX && b.p.X.Min == b.p.X.Max {
		b.p.X.Min /= 2
		b.p.X.Max *= 2
	}
}
