package transport

import (
	"context"
	"fmt"
	"github.com/go-faster/errors"
	"github.com/imakiri/vive/observer"
	"log"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultPort         = 5555
	DefaultBufferSize   = 4096
	DefaultReadTimeout  = 100 * time.Millisecond
	DefaultMaxErrors    = 5
	DefaultErrorBackoff = 500 * time.Millisecond
	DefaultRebindDelay  = time.Second
)

type Datagram struct {
	Data []byte
	From *net.UDPAddr
	At   time.Time
}

type ListenerConfig struct {
	Host       string
	Port       uint16
	BufferSize int
	// AcceptFrom drops datagrams from anywhere else. A bare host matches any
	// source port.
	AcceptFrom   string
	ReadTimeout  time.Duration
	MaxErrors    int
	ErrorBackoff time.Duration
	RebindDelay  time.Duration
	Meter        *observer.Meter
	Bind         Binder
}

// Listener receives datagrams on one port. Repeated read errors or an explicit
// Rebind close the socket and bind it again; nothing else is recovered.
type Listener struct {
	mu   *sync.Mutex
	conn Socket

	addr         string
	bufferSize   int
	acceptIP     net.IP
	acceptPort   int
	readTimeout  time.Duration
	maxErrors    int
	errorBackoff time.Duration
	rebindDelay  time.Duration
	meter        *observer.Meter
	bind         Binder

	broken *atomic.Bool
}

func NewListener(cfg ListenerConfig) (*Listener, error) {
	var listener = new(Listener)
	listener.mu = new(sync.Mutex)
	listener.broken = new(atomic.Bool)

	var host = cfg.Host
	if host == "" {
		host = "0.0.0.0"
	}
	listener.addr = net.JoinHostPort(host, strconv.Itoa(int(cfg.Port)))

	listener.bufferSize = cfg.BufferSize
	if listener.bufferSize <= 0 {
		listener.bufferSize = DefaultBufferSize
	}
	listener.readTimeout = cfg.ReadTimeout
	if listener.readTimeout <= 0 {
		listener.readTimeout = DefaultReadTimeout
	}
	listener.maxErrors = cfg.MaxErrors
	if listener.maxErrors <= 0 {
		listener.maxErrors = DefaultMaxErrors
	}
	listener.errorBackoff = cfg.ErrorBackoff
	if listener.errorBackoff <= 0 {
		listener.errorBackoff = DefaultErrorBackoff
	}
	listener.rebindDelay = cfg.RebindDelay
	if listener.rebindDelay <= 0 {
		listener.rebindDelay = DefaultRebindDelay
	}
	listener.meter = cfg.Meter
	listener.bind = cfg.Bind
	if listener.bind == nil {
		listener.bind = BindUDP
	}

	if cfg.AcceptFrom != "" {
		var err = listener.parseAccept(cfg.AcceptFrom)
		if err != nil {
			return nil, errors.Wrap(err, "accept from")
		}
	}

	return listener, nil
}

func (l *Listener) parseAccept(from string) error {
	var host, port, err = net.SplitHostPort(from)
	if err != nil {
		host, port = from, ""
	}

	var ips []net.IP
	ips, err = net.LookupIP(host)
	if err != nil {
		return errors.Wrap(err, "net.LookupIP")
	}
	if len(ips) == 0 {
		return errors.Errorf("no address for %s", host)
	}
	l.acceptIP = ips[0]

	if port != "" {
		l.acceptPort, err = strconv.Atoi(port)
		if err != nil {
			return errors.Wrap(err, "strconv.Atoi")
		}
	}
	return nil
}

func (l *Listener) accepts(addr *net.UDPAddr) bool {
	if l.acceptIP == nil {
		return true
	}
	if addr == nil || !addr.IP.Equal(l.acceptIP) {
		return false
	}
	return l.acceptPort == 0 || addr.Port == l.acceptPort
}

// Bind closes the current socket, if any, and opens a new one.
func (l *Listener) Bind(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}

	var conn, err = l.bind(ctx, l.addr)
	if err != nil {
		l.broken.Store(true)
		return errors.Wrapf(err, "bind %s", l.addr)
	}

	// keep the port the system picked so a rebind lands on the same one
	if udp, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		var host, port, _ = net.SplitHostPort(l.addr)
		if port == "0" {
			l.addr = net.JoinHostPort(host, strconv.Itoa(udp.Port))
		}
	}

	l.conn = conn
	l.broken.Store(false)
	log.Printf("socket bound on %s", conn.LocalAddr().String())
	return nil
}

// Rebind asks the receive loop to rebind the socket.
func (l *Listener) Rebind() {
	l.broken.Store(true)
}

func (l *Listener) OK() bool {
	return !l.broken.Load()
}

func (l *Listener) Status() string {
	if l.OK() {
		return "OK"
	}
	return "ERROR"
}

func (l *Listener) LocalAddr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	return l.conn.LocalAddr()
}

func (l *Listener) socket() Socket {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn
}

func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	var err = l.conn.Close()
	l.conn = nil
	return err
}

// Run receives until ctx is done, handing each accepted datagram to handle on
// the calling goroutine. The socket is bound first if Bind was not called.
func (l *Listener) Run(ctx context.Context, handle func(Datagram)) error {
	if handle == nil {
		return errors.New("handle is nil")
	}
	defer l.Close()

	if l.socket() == nil && l.OK() {
		if err := l.Bind(ctx); err != nil {
			log.Printf("error initializing socket: %v", err)
		}
	}

	var buf = make([]byte, l.bufferSize)
	var consecutive int
	for {
		if ctx.Err() != nil {
			return nil
		}

		if !l.OK() || l.socket() == nil {
			log.Println("socket error detected, attempting to reinitialize")
			if err := l.Bind(ctx); err != nil {
				log.Printf("error initializing socket: %v", err)
			}
			consecutive = 0
			if !sleep(ctx, l.rebindDelay) {
				return nil
			}
			continue
		}

		var conn = l.socket()
		if conn == nil {
			continue
		}
		var n int
		var addr *net.UDPAddr
		var err = conn.SetReadDeadline(time.Now().Add(l.readTimeout))
		if err != nil {
			err = errors.Wrap(err, "conn.SetReadDeadline")
		} else {
			n, addr, err = conn.ReadFromUDP(buf)
		}
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}

			consecutive++
			log.Printf("socket error (%d/%d): %v", consecutive, l.maxErrors, err)
			if consecutive >= l.maxErrors {
				log.Printf("multiple consecutive errors: %v", err)
				l.Rebind()
				consecutive = 0
			}
			if !sleep(ctx, l.errorBackoff) {
				return nil
			}
			continue
		}
		consecutive = 0

		if !l.accepts(addr) {
			continue
		}
		if l.meter != nil {
			l.meter.Add(n)
		}

		var data = make([]byte, n)
		copy(data, buf[:n])
		handle(Datagram{Data: data, From: addr, At: time.Now()})
	}
}

func (d Datagram) Source() string {
	if d.From == nil {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", d.From.IP.String(), d.From.Port)
}

func sleep(ctx context.Context, d time.Duration) bool {
	var timer = time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
