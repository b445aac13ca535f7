package vive

import (
	"bytes"
	"context"
	"github.com/imakiri/vive/record"
	"github.com/imakiri/vive/render"
	"github.com/imakiri/vive/snapshot"
	"github.com/imakiri/vive/tracking/sim"
	"github.com/imakiri/vive/transport"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	var path = filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSenderConfig(t *testing.T) {
	var config, err = LoadSenderConfig(writeConfig(t, `
targets = ["10.0.0.1:5555", "10.0.0.2:6000"]
interval = "50ms"
quiet = true
`))
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.1:5555", "10.0.0.2:6000"}, config.Targets)
	require.Equal(t, 50*time.Millisecond, config.Interval)
	require.True(t, config.Quiet)
	require.Zero(t, config.Report)

	config, err = LoadSenderConfig(writeConfig(t, ``))
	require.NoError(t, err)
	require.Equal(t, DefaultSenderConfig(), config)

	_, err = LoadSenderConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestLoadReceiverConfig(t *testing.T) {
	var config, err = LoadReceiverConfig(writeConfig(t, `
port = 6000
mode = "full"
axis_limit = 1.5
plot = "controllers.png"
plot_interval = "250ms"
no_terminal = true
`))
	require.NoError(t, err)
	require.EqualValues(t, 6000, config.Port)
	require.Equal(t, render.Full, config.Mode)
	require.Equal(t, 1.5, config.AxisLimit)
	require.Equal(t, "controllers.png", config.Plot)
	require.Equal(t, 250*time.Millisecond, config.PlotInterval)
	require.True(t, config.NoTerminal)
	require.Equal(t, 50, config.TrailLength)
	require.Equal(t, DefaultStatusInterval, config.StatusInterval)
	require.Equal(t, transport.DefaultBufferSize, config.BufferSize)

	config, err = LoadReceiverConfig(writeConfig(t, ``))
	require.NoError(t, err)
	require.Equal(t, DefaultReceiverConfig(), config)
	require.EqualValues(t, transport.DefaultPort, config.Port)
	require.Equal(t, render.Status, config.Mode)

	_, err = LoadReceiverConfig(writeConfig(t, `mode = "3d"`))
	require.Error(t, err)
}

func freePort(t *testing.T) uint16 {
	t.Helper()
	var conn, err = net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer conn.Close()
	return uint16(conn.LocalAddr().(*net.UDPAddr).Port)
}

func datagram(data string) transport.Datagram {
	return transport.Datagram{
		Data: []byte(data),
		From: &net.UDPAddr{IP: net.IPv4(10, 0, 0, 2), Port: 4000},
		At:   time.Now(),
	}
}

func TestHandle(t *testing.T) {
	var buf bytes.Buffer
	var r, err = NewReceiver(&ReceiverConfig{Mode: render.Simple}, render.NewTerminal(&buf))
	require.NoError(t, err)

	r.Handle(datagram(`{"left": {"tracked": true, "position": {"x": 1, "y": 2, "z": 3}, "buttons": {"trigger": true}}}`))
	require.Contains(t, buf.String(), "From: 10.0.0.2:4000")
	require.Contains(t, buf.String(), "LEFT CONTROLLER:")

	var view = r.State().View(time.Now())
	require.EqualValues(t, 1, view.Updates)
	require.True(t, view.Hand(snapshot.Left).Tracked)
	require.True(t, view.Hand(snapshot.Left).TriggerPressed)

	r.State().SetDebug(true)
	r.Handle(datagram(`[1, 2, 3]`))
	r.Handle(datagram(`not json at all`))
	require.EqualValues(t, 1, r.State().View(time.Now()).Updates)
}

func TestHandleStatusModeDoesNotPrint(t *testing.T) {
	var buf bytes.Buffer
	var r, err = NewReceiver(&ReceiverConfig{}, render.NewTerminal(&buf))
	require.NoError(t, err)

	r.Handle(datagram(`{"right": {"tracked": false, "buttons": {}}}`))
	require.Empty(t, buf.String())
	require.EqualValues(t, 1, r.State().View(time.Now()).Updates)
}

func TestCommand(t *testing.T) {
	var terminal = render.NewTerminal(io.Discard)
	var r, err = NewReceiver(&ReceiverConfig{}, terminal)
	require.NoError(t, err)

	require.True(t, r.Command('a'))
	require.False(t, r.State().View(time.Now()).AutoScale)

	require.True(t, r.Command('d'))
	require.True(t, r.State().Debug())

	require.True(t, r.Command('t'))
	require.False(t, terminal.Enabled())

	require.True(t, r.Command('r'))
	require.False(t, r.listener.OK())

	require.True(t, r.Command('q'))
	require.True(t, r.Command('q'))
	require.False(t, r.Command('x'))

	r, err = NewReceiver(&ReceiverConfig{}, nil)
	require.NoError(t, err)
	require.False(t, r.Command('t'))
}

func TestNoTerminal(t *testing.T) {
	var terminal = render.NewTerminal(io.Discard)
	var _, err = NewReceiver(&ReceiverConfig{NoTerminal: true}, terminal)
	require.NoError(t, err)
	require.False(t, terminal.Enabled())
}

func TestSenderStep(t *testing.T) {
	var conn, err = net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer conn.Close()

	var buf bytes.Buffer
	var now = time.Now()
	sender, err := NewSender(context.Background(), &SenderConfig{
		Targets: []string{conn.LocalAddr().String()},
	}, sim.NewSystem(sim.WithHands(snapshot.Left)), render.NewTerminal(&buf))
	require.NoError(t, err)
	defer sender.transport.Close()
	require.Equal(t, DefaultSendInterval, sender.config.Interval)

	sender.discover(now)
	require.NoError(t, sender.step(now))
	require.Contains(t, buf.String(), "LEFT CONTROLLER:")
	require.Contains(t, buf.String(), "RIGHT CONTROLLER: Not detected")

	var data = make([]byte, transport.DefaultBufferSize)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := conn.ReadFromUDP(data)
	require.NoError(t, err)

	snap, err := snapshot.Decode(data[:n])
	require.NoError(t, err)
	require.NotNil(t, snap.Left)
	require.True(t, snap.Left.Tracked)
	require.Nil(t, snap.Right)
	require.InDelta(t, float64(now.UnixNano())/1e9, snap.Timestamp, 1e-3)
}

func TestNewSenderInvalid(t *testing.T) {
	var _, err = NewSender(context.Background(), nil, sim.NewSystem(), nil)
	require.Error(t, err)
	_, err = NewSender(context.Background(), DefaultSenderConfig(), nil, nil)
	require.Error(t, err)
}

func TestSenderToReceiver(t *testing.T) {
	defer goleak.VerifyNone(t)

	var dir = t.TempDir()
	var port = freePort(t)
	var r, err = NewReceiver(&ReceiverConfig{
		Host:           "127.0.0.1",
		Port:           port,
		StatusInterval: 20 * time.Millisecond,
		Plot:           filepath.Join(dir, "controllers.png"),
		PlotInterval:   50 * time.Millisecond,
		Record:         dir,
		Report:         time.Second,
	}, render.NewTerminal(io.Discard))
	require.NoError(t, err)

	var received = make(chan error, 1)
	go func() {
		received <- r.Run(context.Background())
	}()
	require.Eventually(t, func() bool { return r.Addr() != nil }, 2*time.Second, 10*time.Millisecond)

	var ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	sender, err := NewSender(ctx, &SenderConfig{
		Targets:  []string{net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port)))},
		Interval: 10 * time.Millisecond,
		Quiet:    true,
	}, sim.NewSystem(), nil)
	require.NoError(t, err)

	var sent = make(chan error, 1)
	go func() {
		sent <- sender.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		var view = r.State().View(time.Now())
		return view.Updates >= 5 && view.Hand(snapshot.Left).Tracked && view.Hand(snapshot.Right).Tracked
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-sent)

	require.True(t, r.Command('q'))
	require.NoError(t, <-received)

	require.FileExists(t, filepath.Join(dir, "controllers.png"))
	entries, err := record.Load(r.recorder.Path())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(entries), 5)
	require.EqualValues(t, 1, entries[0].Seq)
	require.False(t, entries[0].Sent.IsZero())
	require.Greater(t, entries[0].Size, 0)
}
