package vive

import (
	"context"
	"github.com/go-faster/errors"
	"github.com/imakiri/vive/observer"
	"github.com/imakiri/vive/observer/reporter"
	"github.com/imakiri/vive/receiver"
	"github.com/imakiri/vive/record"
	"github.com/imakiri/vive/render"
	"github.com/imakiri/vive/snapshot"
	"github.com/imakiri/vive/transport"
	"golang.org/x/sync/errgroup"
	"io"
	"log"
	"net"
	"sync"
	"time"
)

// debugPrefix is how much of an invalid payload debug mode logs.
const debugPrefix = 100

type Receiver struct {
	config   *ReceiverConfig
	state    *receiver.State
	listener *transport.Listener
	terminal *render.Terminal
	recorder *record.Recorder
	meter    *observer.Meter

	quit     chan struct{}
	quitOnce *sync.Once
	now      func() time.Time
}

// NewReceiver prepares the listener and, when configured, the recorder.
// terminal may be nil.
func NewReceiver(config *ReceiverConfig, terminal *render.Terminal) (*Receiver, error) {
	if config == nil {
		return nil, errors.New("config is nil")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "config.Validate")
	}

	var r = new(Receiver)
	r.config = config
	r.terminal = terminal
	r.quit = make(chan struct{})
	r.quitOnce = new(sync.Once)
	r.now = time.Now
	r.state = receiver.NewState(config.TrailLength, config.AxisLimit, r.now())
	r.state.SetDebug(config.Debug)

	if terminal != nil {
		terminal.SetEnabled(!config.NoTerminal)
	}

	var err error
	if config.Report > 0 {
		r.meter, err = observer.NewMeter(reporter.NewThroughput("received", config.Report), config.Report)
		if err != nil {
			return nil, errors.Wrap(err, "observer.NewMeter")
		}
	}

	r.listener, err = transport.NewListener(transport.ListenerConfig{
		Host:       config.Host,
		Port:       config.Port,
		BufferSize: config.BufferSize,
		AcceptFrom: config.AcceptFrom,
		Meter:      r.meter,
	})
	if err != nil {
		r.close()
		return nil, errors.Wrap(err, "transport.NewListener")
	}

	if config.Record != "" {
		r.recorder, err = record.NewRecorder(config.Record)
		if err != nil {
			r.close()
			return nil, errors.Wrap(err, "record.NewRecorder")
		}
		log.Printf("recording session %s to %s", r.recorder.Session(), r.recorder.Path())
	}

	return r, nil
}

func (r *Receiver) State() *receiver.State {
	return r.state
}

// Addr is the bound socket address, nil while unbound.
func (r *Receiver) Addr() net.Addr {
	return r.listener.LocalAddr()
}

func (r *Receiver) Handle(d transport.Datagram) {
	var debug = r.state.Debug()
	if debug {
		log.Printf("received data from %s, size: %d bytes", d.Source(), len(d.Data))
	}

	var snap, err = snapshot.Decode(d.Data)
	if err != nil {
		log.Printf("received invalid data from %s: %v", d.Source(), err)
		if debug {
			var raw = d.Data
			if len(raw) > debugPrefix {
				raw = raw[:debugPrefix]
			}
			log.Printf("raw data: %q...", raw)
		}
		return
	}

	if debug {
		for _, hand := range snapshot.Hands {
			if c := snap.Controller(hand); c != nil {
				log.Printf("%s controller tracked: %t", hand, c.Tracked)
			}
		}
	}

	r.state.Apply(snap, d.At)

	if r.recorder != nil {
		if err = r.recorder.Record(snap.Time(), d.At, len(d.Data), d.Source()); err != nil {
			log.Printf("recorder.Record: %v", err)
		}
	}

	if r.terminal != nil && r.config.Mode != render.Status {
		err = r.terminal.Show(func(w io.Writer) error {
			return render.Datagram(w, r.config.Mode, d.Source(), d.At, d.Data, snap)
		})
		if err != nil {
			log.Printf("terminal.Show: %v", err)
		}
	}
}

// Command applies one keyboard command and reports whether it was known.
func (r *Receiver) Command(key rune) bool {
	switch key {
	case 'a':
		log.Printf("auto-scaling: %s", onOff(r.state.ToggleAutoScale()))
	case 'r':
		log.Println("manually reinitializing socket")
		r.listener.Rebind()
	case 'd':
		log.Printf("debug mode: %s", onOff(r.state.ToggleDebug()))
	case 't':
		if r.terminal == nil {
			return false
		}
		log.Printf("terminal output: %s", onOff(r.terminal.Toggle()))
	case 'q':
		r.quitOnce.Do(func() {
			close(r.quit)
		})
	default:
		return false
	}
	return true
}

func (r *Receiver) showStatus() {
	var now = r.now()
	var err = r.terminal.Show(func(w io.Writer) error {
		render.StatusView(w, r.state.View(now), r.listener.Status(), now)
		return nil
	})
	if err != nil {
		log.Printf("terminal.Show: %v", err)
	}
}

func (r *Receiver) savePlot() {
	if err := render.SavePlot(r.config.Plot, r.state.View(r.now())); err != nil {
		log.Printf("render.SavePlot: %v", err)
	}
}

func every(ctx context.Context, interval time.Duration, f func()) error {
	var ticker = time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			f()
		}
	}
}

// Run receives until ctx is done or the quit command arrives.
func (r *Receiver) Run(ctx context.Context) error {
	defer r.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("listening for controller data on port %d", r.config.Port)
	if err := r.listener.Bind(ctx); err != nil {
		log.Printf("error initializing socket: %v", err)
	}

	var group, groupCtx = errgroup.WithContext(ctx)
	group.Go(func() error {
		return r.listener.Run(groupCtx, r.Handle)
	})
	group.Go(func() error {
		select {
		case <-groupCtx.Done():
		case <-r.quit:
			cancel()
		}
		return nil
	})
	if r.terminal != nil && r.config.Mode == render.Status {
		group.Go(func() error {
			return every(groupCtx, r.config.StatusInterval, r.showStatus)
		})
	}
	if r.config.Plot != "" {
		group.Go(func() error {
			return every(groupCtx, r.config.PlotInterval, r.savePlot)
		})
	}

	if err := group.Wait(); err != nil {
		return errors.Wrap(err, "group.Wait")
	}
	if r.config.Plot != "" {
		r.savePlot()
	}
	return nil
}

func (r *Receiver) close() {
	if r.meter != nil {
		r.meter.Stop()
	}
	if r.recorder != nil {
		if err := r.recorder.Close(); err != nil {
			log.Printf("recorder.Close: %v", err)
		}
	}
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}
