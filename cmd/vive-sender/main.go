package main

import (
	"context"
	"flag"
	"github.com/go-faster/errors"
	"github.com/imakiri/vive"
	"github.com/imakiri/vive/render"
	"github.com/imakiri/vive/tracking/sim"
	"github.com/imakiri/vive/transport"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"time"
)

func config(path, ip string, port uint, interval time.Duration, quiet bool) (*vive.SenderConfig, error) {
	var cfg = vive.DefaultSenderConfig()
	if path != "" {
		var err error
		cfg, err = vive.LoadSenderConfig(path)
		if err != nil {
			return nil, errors.Wrap(err, "vive.LoadSenderConfig")
		}
	}

	if ip != "" {
		cfg.Targets = []string{net.JoinHostPort(ip, strconv.Itoa(int(port)))}
	}
	if interval > 0 {
		cfg.Interval = interval
	}
	if quiet {
		cfg.Quiet = true
	}
	return cfg, nil
}

func main() {
	var cfgPath = flag.String("cfg", "", "path to toml config file")
	var ip = flag.String("ip", "", "target ip address, overrides the config targets")
	var port = flag.Uint("port", transport.DefaultPort, "target port")
	var interval = flag.Duration("interval", 0, "send interval, 100ms by default")
	var quiet = flag.Bool("quiet", false, "do not print controller data")
	flag.Parse()

	var cfg, err = config(*cfgPath, *ip, *port, *interval, *quiet)
	if err != nil {
		log.Fatalln(err)
	}

	var terminal *render.Terminal
	if !cfg.Quiet {
		terminal = render.NewTerminal(os.Stdout)
		log.SetOutput(terminal.Bypass())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancel()

	var system = sim.NewSystem()
	defer system.Close()

	sender, err := vive.NewSender(ctx, cfg, system, terminal)
	if err != nil {
		log.Fatalln(errors.Wrap(err, "vive.NewSender"))
	}

	log.Printf("sending controller data every %s", cfg.Interval)
	if err = sender.Run(ctx); err != nil {
		log.Fatalln(errors.Wrap(err, "sender.Run"))
	}
	log.Println("exiting")
}
