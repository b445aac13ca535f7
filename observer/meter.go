package observer

import (
	"github.com/go-faster/errors"
	"math/bits"
	"sync"
	"sync/atomic"
	"time"
)

// Meter counts bytes and packets and reports the byte total and the delta
// since the previous report every interval.
type Meter struct {
	done        chan struct{}
	stopped     chan struct{}
	once        *sync.Once
	rep         Reporter
	totalBefore uint64
	total       *uint64
	packets     *uint64
	interval    time.Duration
}

func NewMeter(rep Reporter, interval time.Duration) (*Meter, error) {
	if rep == nil {
		return nil, errors.New("reporter is nil")
	}
	if interval <= 0 {
		return nil, errors.Errorf("invalid interval: %s", interval)
	}

	var meter = new(Meter)
	meter.done = make(chan struct{})
	meter.stopped = make(chan struct{})
	meter.once = new(sync.Once)
	meter.rep = rep
	meter.total = new(uint64)
	meter.packets = new(uint64)
	meter.interval = interval

	go meter.run()
	return meter, nil
}

func (m *Meter) run() {
	defer close(m.stopped)

	var ticker = time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.report()
		select {
		case <-m.done:
			return
		case <-ticker.C:
		}
	}
}

func (m *Meter) report() {
	var total = atomic.LoadUint64(m.total)
	var delta, underflow = bits.Sub64(total, m.totalBefore, 0)
	if underflow == 0 {
		m.rep.Report(total, delta)
	} else {
		m.rep.Report(total, 0)
	}
	m.totalBefore = total
}

// Add records one packet of n bytes.
func (m *Meter) Add(n int) {
	if n < 0 {
		return
	}
	atomic.AddUint64(m.total, uint64(n))
	atomic.AddUint64(m.packets, 1)
}

func (m *Meter) Total() uint64 {
	return atomic.LoadUint64(m.total)
}

func (m *Meter) Packets() uint64 {
	return atomic.LoadUint64(m.packets)
}

// Stop ends reporting and waits for the reporting goroutine.
func (m *Meter) Stop() {
	m.once.Do(func() {
		close(m.done)
	})
	<-m.stopped
}
