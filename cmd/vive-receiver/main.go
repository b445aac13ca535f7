package main

import (
	"bufio"
	"context"
	"flag"
	"github.com/go-faster/errors"
	"github.com/imakiri/vive"
	"github.com/imakiri/vive/render"
	"io"
	"log"
	"os"
	"os/signal"
	"unicode"
)

type flags struct {
	cfg         string
	port        uint
	mode        string
	trailLength int
	axisLimit   float64
	noTerminal  bool
	plot        string
	record      string
	debug       bool
}

func config(f flags) (*vive.ReceiverConfig, error) {
	var cfg = vive.DefaultReceiverConfig()
	if f.cfg != "" {
		var err error
		cfg, err = vive.LoadReceiverConfig(f.cfg)
		if err != nil {
			return nil, errors.Wrap(err, "vive.LoadReceiverConfig")
		}
	}

	if f.port != 0 {
		cfg.Port = uint16(f.port)
	}
	if f.mode != "" {
		cfg.Mode = render.Mode(f.mode)
	}
	if f.trailLength > 0 {
		cfg.TrailLength = f.trailLength
	}
	if f.axisLimit > 0 {
		cfg.AxisLimit = f.axisLimit
	}
	if f.noTerminal {
		cfg.NoTerminal = true
	}
	if f.plot != "" {
		cfg.Plot = f.plot
	}
	if f.record != "" {
		cfg.Record = f.record
	}
	if f.debug {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "cfg.Validate")
	}
	return cfg, nil
}

// keys feeds every non-space rune typed on in to the receiver.
func keys(in io.Reader, receiver *vive.Receiver) {
	var reader = bufio.NewReader(in)
	for {
		var key, _, err = reader.ReadRune()
		if err != nil {
			return
		}
		if unicode.IsSpace(key) {
			continue
		}
		if !receiver.Command(unicode.ToLower(key)) {
			log.Printf("unknown command %q", key)
		}
	}
}

func main() {
	var f flags
	flag.StringVar(&f.cfg, "cfg", "", "path to toml config file")
	flag.UintVar(&f.port, "port", 0, "port to listen on, 5555 by default")
	flag.StringVar(&f.mode, "mode", "", "display mode: simple, full, raw or status")
	flag.IntVar(&f.trailLength, "trail-length", 0, "positions kept per controller trail")
	flag.Float64Var(&f.axisLimit, "axis-limit", 0, "fixed plot half range in meters")
	flag.BoolVar(&f.noTerminal, "no-terminal", false, "start with terminal output off")
	flag.StringVar(&f.plot, "plot", "", "image file to redraw with the controller plot")
	flag.StringVar(&f.record, "record", "", "directory to record received snapshots into")
	flag.BoolVar(&f.debug, "debug", false, "log every datagram")
	flag.Parse()

	var cfg, err = config(f)
	if err != nil {
		log.Fatalln(err)
	}

	var terminal = render.NewTerminal(os.Stdout)
	log.SetOutput(terminal.Bypass())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancel()

	receiver, err := vive.NewReceiver(cfg, terminal)
	if err != nil {
		log.Fatalln(errors.Wrap(err, "vive.NewReceiver"))
	}

	log.Printf("axis limit set to ±%.1f meters", cfg.AxisLimit)
	log.Println("type a command and press enter: a auto-scale, r rebind, d debug, t terminal, q quit")
	go keys(os.Stdin, receiver)

	if err = receiver.Run(ctx); err != nil {
		log.Fatalln(errors.Wrap(err, "receiver.Run"))
	}
	log.Println("exiting")
}
