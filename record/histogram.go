package record

import (
	"fmt"
	"github.com/go-faster/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"image/color"
	"sort"
	"time"
)

// Bins counts latencies into buckets of width, keyed by bucket index.
// Entries without a sent time are skipped.
func Bins(entries []Entry, width time.Duration) map[int64]uint64 {
	if width <= 0 {
		width = time.Millisecond
	}

	var bins = map[int64]uint64{}
	for _, e := range entries {
		if e.Sent.IsZero() {
			continue
		}
		var latency = e.Latency()
		var bin = int64(latency / width)
		if latency < 0 && latency%width != 0 {
			bin--
		}
		bins[bin]++
	}
	return bins
}

// Histogram plots the latency distribution, one bar per bucket of width.
func Histogram(entries []Entry, width time.Duration) (*plot.Plot, error) {
	if width <= 0 {
		width = time.Millisecond
	}

	var counts = Bins(entries, width)
	if len(counts) == 0 {
		return nil, errors.New("no stamped entries")
	}

	var keys = make([]int64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var ms = float64(width) / float64(time.Millisecond)
	var bins = make([]plotter.HistogramBin, 0, len(keys))
	var total uint64
	for _, k := range keys {
		total += counts[k]
		bins = append(bins, plotter.HistogramBin{
			Min:    float64(k) * ms,
			Max:    float64(k+1) * ms,
			Weight: float64(counts[k]),
		})
	}

	var histogram = &plotter.Histogram{
		Bins:      bins,
		Width:     ms,
		FillColor: color.Gray{Y: 128},
		LineStyle: plotter.DefaultLineStyle,
	}

	var p = plot.New()
	p.Title.Text = fmt.Sprintf("Latency, %d datagrams", total)
	p.X.Label.Text = "ms"
	p.Y.Label.Text = "count"
	p.Add(histogram)
	return p, nil
}
