//go:build unix

package transport

import (
	"golang.org/x/sys/unix"
	"syscall"
)

func reuseAddr(network, address string, c syscall.RawConn) error {
	var serr error
	var err = c.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return serr
}
