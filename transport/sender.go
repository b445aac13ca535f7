package transport

import (
	"context"
	"fmt"
	"github.com/go-faster/errors"
	"github.com/imakiri/vive/observer"
	"io"
	"log"
	"net"
	"time"
)

type target struct {
	addr   string
	writer io.WriteCloser
}

// Sender writes each payload as one datagram to every target.
type Sender struct {
	targets []target
}

// NewSender dials each host:port target. A nil reporter disables metering.
func NewSender(ctx context.Context, targets []string, rep observer.Reporter, interval time.Duration) (*Sender, error) {
	if len(targets) == 0 {
		return nil, errors.New("no targets")
	}

	var dialer = net.Dialer{
		Timeout:   0,
		Deadline:  time.Time{},
		LocalAddr: nil,
		KeepAlive: 0,
	}

	var sender = new(Sender)
	for _, addr := range targets {
		var connection, err = dialer.DialContext(ctx, "udp4", addr)
		if err != nil {
			sender.Close()
			return nil, errors.Wrapf(err, "dialer.DialContext(%s)", addr)
		}

		var conn, ok = connection.(*net.UDPConn)
		if !ok {
			connection.Close()
			sender.Close()
			return nil, errors.New("connection.(*net.UDPConn) is not ok")
		}

		var writer io.WriteCloser = conn
		if rep != nil {
			writer, err = observer.NewWriter(conn, rep, interval)
			if err != nil {
				conn.Close()
				sender.Close()
				return nil, errors.Wrap(err, "observer.NewWriter")
			}
		}

		log.Println("sending controller data to", conn.RemoteAddr().String())
		sender.targets = append(sender.targets, target{addr: conn.RemoteAddr().String(), writer: writer})
	}
	return sender, nil
}

func (s *Sender) Targets() []string {
	var addrs = make([]string, 0, len(s.targets))
	for _, t := range s.targets {
		addrs = append(addrs, t.addr)
	}
	return addrs
}

// Send tries every target and returns the first failure, wrapped with how
// many targets failed.
func (s *Sender) Send(payload []byte) error {
	var first error
	var failed int
	for _, t := range s.targets {
		var n, err = t.writer.Write(payload)
		if err == nil && n != len(payload) {
			err = errors.Errorf("written %d of %d bytes", n, len(payload))
		}
		if err != nil {
			failed++
			if first == nil {
				first = errors.Wrap(err, fmt.Sprintf("send to %s", t.addr))
			}
		}
	}
	if failed > 0 {
		return errors.Wrap(first, fmt.Sprintf("%d of %d targets failed", failed, len(s.targets)))
	}
	return first
}

func (s *Sender) Close() error {
	var first error
	for _, t := range s.targets {
		if err := t.writer.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.targets = nil
	return first
}
