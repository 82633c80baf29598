package socket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrUnsupported is returned by built-in configurators on platforms without
// the required socket option.
var ErrUnsupported = errors.New("socket option not supported on this platform")

// ErrLingerRange is returned for linger timeouts that do not fit the
// kernel's 32-bit field.
var ErrLingerRange = errors.New("linger timeout out of range")

// Configurator applies a configuration side effect to a socket.
type Configurator interface {
	Apply(conn syscall.RawConn) error
}

// Func adapts a plain function to Configurator.
type Func func(conn syscall.RawConn) error

// Apply calls f(conn).
func (f Func) Apply(conn syscall.RawConn) error {
	return f(conn)
}

type chain []Configurator

// Chain returns a Configurator that applies cfgs in order and stops at the
// first error.
func Chain(cfgs ...Configurator) Configurator {
	out := make(chain, 0, len(cfgs))
	for _, c := range cfgs {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (c chain) Apply(conn syscall.RawConn) error {
	for i, cfg := range c {
		if err := cfg.Apply(conn); err != nil {
			return fmt.Errorf("socket configurator %d (%s): %w", i, Describe(cfg), err)
		}
	}
	return nil
}

// Describe returns a short human readable label for a configurator.
func Describe(c Configurator) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", c)
}

// DialerControl returns a net.Dialer Control hook applying cfgs to every
// socket the dialer creates. It returns nil when cfgs is empty so the dialer
// keeps its fast path.
func DialerControl(cfgs []Configurator) func(network, address string, c syscall.RawConn) error {
	if len(cfgs) == 0 {
		return nil
	}
	applied := Chain(cfgs...)
	return func(network, address string, c syscall.RawConn) error {
		if err := applied.Apply(c); err != nil {
			return fmt.Errorf("configure %s socket to %s: %w", network, address, err)
		}
		return nil
	}
}

// ListenConfig returns a net.ListenConfig applying cfgs to listening sockets.
func ListenConfig(cfgs []Configurator) net.ListenConfig {
	return net.ListenConfig{Control: DialerControl(cfgs)}
}

// Listen announces on the local address with cfgs applied to the listener.
func Listen(ctx context.Context, network, address string, cfgs []Configurator) (net.Listener, error) {
	lc := ListenConfig(cfgs)
	return lc.Listen(ctx, network, address)
}

// ApplyConn applies cfgs to an established connection.
func ApplyConn(conn syscall.Conn, cfgs ...Configurator) error {
	if conn == nil {
		return fmt.Errorf("apply socket configurators: %w", syscall.EINVAL)
	}
	raw, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("apply socket configurators: %w", err)
	}
	return Chain(cfgs...).Apply(raw)
}

// control runs fn against the socket descriptor and merges the Control error
// with the error fn reports.
func control(conn syscall.RawConn, fn func(fd uintptr) error) error {
	if conn == nil {
		return syscall.EINVAL
	}
	var opErr error
	if err := conn.Control(func(fd uintptr) {
		opErr = fn(fd)
	}); err != nil {
		return err
	}
	return opErr
}
