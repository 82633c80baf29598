//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package socket

import (
	"fmt"
	"math"
	"syscall"

	"golang.org/x/sys/unix"
)

func setInt(conn syscall.RawConn, level, opt, value int) error {
	return control(conn, func(fd uintptr) error {
		return unix.SetsockoptInt(int(fd), level, opt, value)
	})
}

func (o NoDelayOption) Apply(conn syscall.RawConn) error {
	return setInt(conn, unix.IPPROTO_TCP, unix.TCP_NODELAY, boolInt(o.Enabled))
}

func (o KeepAliveOption) Apply(conn syscall.RawConn) error {
	return setInt(conn, unix.SOL_SOCKET, unix.SO_KEEPALIVE, boolInt(o.Enabled))
}

func (o ReceiveBufferOption) Apply(conn syscall.RawConn) error {
	return setInt(conn, unix.SOL_SOCKET, unix.SO_RCVBUF, o.Bytes)
}

func (o SendBufferOption) Apply(conn syscall.RawConn) error {
	return setInt(conn, unix.SOL_SOCKET, unix.SO_SNDBUF, o.Bytes)
}

func (o LingerOption) Apply(conn syscall.RawConn) error {
	if int64(o.Seconds) > math.MaxInt32 {
		return fmt.Errorf("%w: %d", ErrLingerRange, o.Seconds)
	}
	l := &unix.Linger{}
	if o.Seconds >= 0 {
		l.Onoff = 1
		l.Linger = int32(o.Seconds)
	}
	return control(conn, func(fd uintptr) error {
		return unix.SetsockoptLinger(int(fd), unix.SOL_SOCKET, unix.SO_LINGER, l)
	})
}

func (o ReuseAddrOption) Apply(conn syscall.RawConn) error {
	return setInt(conn, unix.SOL_SOCKET, unix.SO_REUSEADDR, boolInt(o.Enabled))
}

func (o ReusePortOption) Apply(conn syscall.RawConn) error {
	return setInt(conn, unix.SOL_SOCKET, unix.SO_REUSEPORT, boolInt(o.Enabled))
}
