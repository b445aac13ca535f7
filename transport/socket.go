package transport

import (
	"context"
	"github.com/go-faster/errors"
	"net"
	"time"
)

// Socket is the part of *net.UDPConn the listener reads through.
type Socket interface {
	ReadFromUDP(b []byte) (n int, addr *net.UDPAddr, err error)
	SetReadDeadline(t time.Time) error
	LocalAddr() net.Addr
	Close() error
}

// Binder opens a socket on addr.
type Binder func(ctx context.Context, addr string) (Socket, error)

// BindUDP binds a udp4 socket with SO_REUSEADDR where the platform has it.
func BindUDP(ctx context.Context, addr string) (Socket, error) {
	var config = net.ListenConfig{
		Control: reuseAddr,
	}

	var listener, err = config.ListenPacket(ctx, "udp4", addr)
	if err != nil {
		return nil, errors.Wrap(err, "config.ListenPacket")
	}

	var conn, ok = listener.(*net.UDPConn)
	if !ok {
		listener.Close()
		return nil, errors.New("listener.(*net.UDPConn) is not ok")
	}
	return conn, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
