package reporter

import (
	"fmt"
	"log"
	"time"
)

// Throughput logs byte rates for one direction of traffic.
type Throughput struct {
	header   string
	interval time.Duration
}

// NewThroughput expects the interval the meter reports at.
func NewThroughput(header string, interval time.Duration) Throughput {
	return Throughput{header: header, interval: interval}
}

func (r Throughput) Report(total, delta uint64) {
	log.Print(r.line(total, delta))
}

func (r Throughput) line(total, delta uint64) string {
	var rate = float64(delta)
	if r.interval > 0 {
		rate = rate / r.interval.Seconds()
	}
	return fmt.Sprintf("[%s] rate: %8.1f B/sec, total: %8d KiB", r.header, rate, total/(1<<10))
}

type Nop struct{}

func (Nop) Report(total, delta uint64) {}
