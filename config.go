package vive

import (
	"github.com/go-faster/errors"
	"github.com/imakiri/vive/receiver"
	"github.com/imakiri/vive/render"
	"github.com/imakiri/vive/transport"
	"github.com/pelletier/go-toml"
	"time"
)

const (
	DefaultTarget         = "127.0.0.1:5555"
	DefaultSendInterval   = 100 * time.Millisecond
	DefaultStatusInterval = 200 * time.Millisecond
	DefaultPlotInterval   = time.Second
)

type SenderConfig struct {
	Targets  []string
	Interval time.Duration
	Quiet    bool
	// Report logs outgoing throughput this often; zero disables it.
	Report time.Duration
}

func DefaultSenderConfig() *SenderConfig {
	var config = new(SenderConfig)
	config.fill()
	return config
}

func (c *SenderConfig) fill() {
	if len(c.Targets) == 0 {
		c.Targets = []string{DefaultTarget}
	}
	if c.Interval <= 0 {
		c.Interval = DefaultSendInterval
	}
}

func LoadSenderConfig(path string) (*SenderConfig, error) {
	var tree, err = toml.LoadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "toml.LoadFile(%s)", path)
	}

	var cfg = new(struct {
		Targets  []string      `toml:"targets"`
		Interval time.Duration `toml:"interval"`
		Quiet    bool          `toml:"quiet"`
		Report   time.Duration `toml:"report"`
	})
	if err = tree.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "tree.Unmarshal(cfg)")
	}

	var config = new(SenderConfig)
	config.Targets = cfg.Targets
	config.Interval = cfg.Interval
	config.Quiet = cfg.Quiet
	config.Report = cfg.Report
	config.fill()
	return config, nil
}

type ReceiverConfig struct {
	Host       string
	Port       uint16
	AcceptFrom string
	BufferSize int

	Mode           render.Mode
	NoTerminal     bool
	StatusInterval time.Duration

	TrailLength int
	AxisLimit   float64

	// Plot is the image path rewritten every PlotInterval; empty disables it.
	Plot         string
	PlotInterval time.Duration

	// Record is the directory for reception logs; empty disables recording.
	Record string
	Debug  bool
	Report time.Duration
}

func DefaultReceiverConfig() *ReceiverConfig {
	var config = new(ReceiverConfig)
	config.fill()
	return config
}

func (c *ReceiverConfig) fill() {
	if c.Port == 0 {
		c.Port = transport.DefaultPort
	}
	if c.BufferSize <= 0 {
		c.BufferSize = transport.DefaultBufferSize
	}
	if c.Mode == "" {
		c.Mode = render.Status
	}
	if c.StatusInterval <= 0 {
		c.StatusInterval = DefaultStatusInterval
	}
	if c.TrailLength <= 0 {
		c.TrailLength = receiver.DefaultTrailLength
	}
	if c.AxisLimit <= 0 {
		c.AxisLimit = receiver.DefaultAxisLimit
	}
	if c.PlotInterval <= 0 {
		c.PlotInterval = DefaultPlotInterval
	}
}

// Validate fills defaults and rejects what cannot run.
func (c *ReceiverConfig) Validate() error {
	c.fill()
	var mode, err = render.ParseMode(string(c.Mode))
	if err != nil {
		return errors.Wrap(err, "mode")
	}
	c.Mode = mode
	return nil
}

func LoadReceiverConfig(path string) (*ReceiverConfig, error) {
	var tree, err = toml.LoadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "toml.LoadFile(%s)", path)
	}

	var cfg = new(struct {
		Host         string        `toml:"host"`
		Port         uint16        `toml:"port"`
		AcceptFrom   string        `toml:"accept_from"`
		BufferSize   int           `toml:"buffer_size"`
		Mode         string        `toml:"mode"`
		NoTerminal   bool          `toml:"no_terminal"`
		Status       time.Duration `toml:"status_interval"`
		TrailLength  int           `toml:"trail_length"`
		AxisLimit    float64       `toml:"axis_limit"`
		Plot         string        `toml:"plot"`
		PlotInterval time.Duration `toml:"plot_interval"`
		Record       string        `toml:"record"`
		Debug        bool          `toml:"debug"`
		Report       time.Duration `toml:"report"`
	})
	if err = tree.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "tree.Unmarshal(cfg)")
	}

	var config = new(ReceiverConfig)
	config.Host = cfg.Host
	config.Port = cfg.Port
	config.AcceptFrom = cfg.AcceptFrom
	config.BufferSize = cfg.BufferSize
	config.Mode = render.Mode(cfg.Mode)
	config.NoTerminal = cfg.NoTerminal
	config.StatusInterval = cfg.Status
	config.TrailLength = cfg.TrailLength
	config.AxisLimit = cfg.AxisLimit
	config.Plot = cfg.Plot
	config.PlotInterval = cfg.PlotInterval
	config.Record = cfg.Record
	config.Debug = cfg.Debug
	config.Report = cfg.Report

	if err = config.Validate(); err != nil {
		return nil, errors.Wrap(err, "config.Validate")
	}
	return config, nil
}
