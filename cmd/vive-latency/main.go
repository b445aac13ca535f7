package main

import (
	"flag"
	"github.com/go-faster/errors"
	"github.com/imakiri/vive/record"
	"gonum.org/v1/plot/vg"
	"log"
	"sort"
	"time"
)

func main() {
	var in = flag.String("in", "", "record file written by vive-receiver -record")
	var out = flag.String("out", "latency.png", "histogram image")
	var bin = flag.Duration("bin", time.Millisecond, "histogram bucket width")
	var size = flag.Float64("size", 8, "image side in inches")
	flag.Parse()

	if *in == "" {
		log.Fatalln("-in is required")
	}

	var entries, err = record.Load(*in)
	if err != nil {
		log.Fatalln(errors.Wrap(err, "record.Load"))
	}

	var latencies = make([]time.Duration, 0, len(entries))
	for _, e := range entries {
		if !e.Sent.IsZero() {
			latencies = append(latencies, e.Latency())
		}
	}
	log.Printf("total: %d, stamped: %d", len(entries), len(latencies))
	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		log.Printf("min: %s, median: %s, max: %s", latencies[0], latencies[len(latencies)/2], latencies[len(latencies)-1])
	}

	p, err := record.Histogram(entries, *bin)
	if err != nil {
		log.Fatalln(errors.Wrap(err, "record.Histogram"))
	}

	var side = vg.Length(*size) * vg.Inch
	if err = p.Save(side, side, *out); err != nil {
		log.Fatalln(errors.Wrap(err, "p.Save"))
	}
	log.Printf("saved %s", *out)
}
