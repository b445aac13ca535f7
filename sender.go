// Package vive wires tracking, transport and rendering into the sender and
// receiver programs.
package vive

import (
	"context"
	"github.com/go-faster/errors"
	"github.com/imakiri/vive/observer"
	"github.com/imakiri/vive/observer/reporter"
	"github.com/imakiri/vive/render"
	"github.com/imakiri/vive/snapshot"
	"github.com/imakiri/vive/tracking"
	"github.com/imakiri/vive/transport"
	"io"
	"log"
	"time"
)

// rediscover is how often missing controllers are looked for again.
const rediscover = time.Second

type Sender struct {
	config      *SenderConfig
	system      tracking.System
	transport   *transport.Sender
	terminal    *render.Terminal
	controllers tracking.Controllers
	discovered  time.Time
	now         func() time.Time
}

// NewSender dials every target. terminal may be nil.
func NewSender(ctx context.Context, config *SenderConfig, system tracking.System, terminal *render.Terminal) (*Sender, error) {
	if config == nil {
		return nil, errors.New("config is nil")
	}
	if system == nil {
		return nil, errors.New("system is nil")
	}
	config.fill()

	var rep observer.Reporter
	if config.Report > 0 {
		rep = reporter.NewThroughput("sent", config.Report)
	}
	var t, err = transport.NewSender(ctx, config.Targets, rep, config.Report)
	if err != nil {
		return nil, errors.Wrap(err, "transport.NewSender")
	}

	var sender = new(Sender)
	sender.config = config
	sender.system = system
	sender.transport = t
	sender.terminal = terminal
	sender.now = time.Now
	return sender, nil
}

func (s *Sender) discover(now time.Time) {
	s.controllers = tracking.Discover(s.system)
	s.discovered = now
	_, left := s.controllers[snapshot.Left]
	_, right := s.controllers[snapshot.Right]
	log.Printf("found controllers: left: %s, right: %s", yesNo(left), yesNo(right))
}

// step samples, encodes and sends one snapshot.
func (s *Sender) step(now time.Time) error {
	if len(s.controllers) < len(snapshot.Hands) && now.Sub(s.discovered) >= rediscover {
		s.discover(now)
	}

	var frame = tracking.Sample(s.system, s.controllers)
	frame.Snapshot.Stamp(now)

	if s.terminal != nil && !s.config.Quiet {
		var err = s.terminal.Show(func(w io.Writer) error {
			render.SenderView(w, frame, s.transport.Targets(), now)
			return nil
		})
		if err != nil {
			log.Printf("terminal.Show: %v", err)
		}
	}

	var payload, err = snapshot.Encode(frame.Snapshot)
	if err != nil {
		return errors.Wrap(err, "snapshot.Encode")
	}
	if err = s.transport.Send(payload); err != nil {
		return errors.Wrap(err, "transport.Send")
	}
	return nil
}

// Run sends a snapshot every interval until ctx is done. Send failures are
// logged and the loop carries on.
func (s *Sender) Run(ctx context.Context) error {
	defer s.transport.Close()

	s.discover(s.now())

	var ticker = time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.step(s.now()); err != nil {
				log.Printf("error sending data: %v", err)
			}
		}
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
