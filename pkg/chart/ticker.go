package chart

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/plot"
)

// ClockTicks relabels the default tick positions as h:m:s clock
// offsets. Positions are left exactly where the default ticker puts
// them; only major tick labels change.
type ClockTicks struct{}

// Ticks implements plot.Ticker.
func (ClockTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i, t := range ticks {
		if t.Label == "" {
			// minor tick
			continue
		}
		ticks[i].Label = formatClock(t.Value)
	}
	return ticks
}

// formatClock renders a second offset as h:m:s, integer division all
// the way down: 3725 becomes "1:2:5", no zero padding.
func formatClock(v float64) string {
	s := int64(v)
	return fmt.Sprintf("%d:%d:%d", s/3600, s/60%60, s%60)
}

// ByteTicks relabels tick positions as byte sizes, for block-size
// axes. Set Log when the axis uses a log scale so positions come from
// the log ticker.
type ByteTicks struct {
	Log bool
}

// Ticks implements plot.Ticker.
func (bt ByteTicks) Ticks(min, max float64) []plot.Tick {
	var base plot.Ticker = plot.DefaultTicks{}
	if bt.Log {
		base = plot.LogTicks{Prec: -1}
	}
	ticks := base.Ticks(min, max)
	for i, t := range ticks {
		if t.Label == "" {
			continue
		}
		ticks[i].Label = humanize.Bytes(uint64(t.Value))
	}
	return ticks
}
