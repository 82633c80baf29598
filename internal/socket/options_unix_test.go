//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package socket

import (
	"context"
	"math"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func dialPair(t *testing.T) *net.TCPConn {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- conn
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		if peer, ok := <-accepted; ok {
			peer.Close()
		}
	})

	return conn.(*net.TCPConn)
}

func getInt(t *testing.T, conn *net.TCPConn, level, opt int) int {
	t.Helper()

	raw, err := conn.SyscallConn()
	require.NoError(t, err)

	var (
		value  int
		optErr error
	)
	require.NoError(t, raw.Control(func(fd uintptr) {
		value, optErr = unix.GetsockoptInt(int(fd), level, opt)
	}))
	require.NoError(t, optErr)
	return value
}

func TestBuiltinOptionsOnConnectedSocket(t *testing.T) {
	conn := dialPair(t)

	require.NoError(t, ApplyConn(conn,
		NoDelay(true),
		KeepAlive(true),
		ReceiveBuffer(64<<10),
		SendBuffer(64<<10),
		Linger(1),
	))

	assert.NotZero(t, getInt(t, conn, unix.IPPROTO_TCP, unix.TCP_NODELAY))
	assert.NotZero(t, getInt(t, conn, unix.SOL_SOCKET, unix.SO_KEEPALIVE))
	assert.GreaterOrEqual(t, getInt(t, conn, unix.SOL_SOCKET, unix.SO_RCVBUF), 64<<10)
	assert.GreaterOrEqual(t, getInt(t, conn, unix.SOL_SOCKET, unix.SO_SNDBUF), 64<<10)
}

func TestApplyOnClosedSocketFails(t *testing.T) {
	conn := dialPair(t)

	raw, err := conn.SyscallConn()
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	configurators := []Configurator{
		NoDelay(true),
		KeepAlive(true),
		ReceiveBuffer(4096),
		SendBuffer(4096),
		Linger(0),
		ReuseAddr(true),
	}
	for _, c := range configurators {
		t.Run(Describe(c), func(t *testing.T) {
			assert.Error(t, c.Apply(raw))
		})
	}
}

func TestListenAppliesConfigurators(t *testing.T) {
	ln, err := Listen(context.Background(), "tcp", "127.0.0.1:0", []Configurator{ReuseAddr(true)})
	require.NoError(t, err)
	defer ln.Close()

	tl, ok := ln.(*net.TCPListener)
	require.True(t, ok)

	raw, err := tl.SyscallConn()
	require.NoError(t, err)

	var reuse int
	var optErr error
	require.NoError(t, raw.Control(func(fd uintptr) {
		reuse, optErr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR)
	}))
	require.NoError(t, optErr)
	assert.NotZero(t, reuse)
}

func TestDialContextKeepsDisabledOptions(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			defer conn.Close()
			buf := make([]byte, 1)
			conn.Read(buf)
		}
	}()

	rec := &recorder{}
	dial := DialContext(&net.Dialer{}, []Configurator{
		rec.configurator("custom", nil),
		NoDelay(false),
		KeepAlive(false),
	})

	conn, err := dial(context.Background(), "tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	tcp, ok := conn.(*net.TCPConn)
	require.True(t, ok)
	assert.Zero(t, getInt(t, tcp, unix.IPPROTO_TCP, unix.TCP_NODELAY))
	assert.Zero(t, getInt(t, tcp, unix.SOL_SOCKET, unix.SO_KEEPALIVE))
	assert.Equal(t, []string{"custom"}, rec.snapshot())
}

func TestDialContextEnablesOptions(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	dial := DialContext(&net.Dialer{KeepAlive: -1}, []Configurator{NoDelay(true), KeepAlive(true)})
	conn, err := dial(context.Background(), "tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	tcp := conn.(*net.TCPConn)
	assert.NotZero(t, getInt(t, tcp, unix.IPPROTO_TCP, unix.TCP_NODELAY))
	assert.NotZero(t, getInt(t, tcp, unix.SOL_SOCKET, unix.SO_KEEPALIVE))
}

func TestLingerOutOfRange(t *testing.T) {
	conn := dialPair(t)

	raw, err := conn.SyscallConn()
	require.NoError(t, err)

	err = Linger(int(int64(math.MaxInt32) + 1)).Apply(raw)
	assert.ErrorIs(t, err, ErrLingerRange)
}
