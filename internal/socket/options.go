package socket

import (
	"fmt"
	"math"
)

// NoDelayOption toggles TCP_NODELAY.
type NoDelayOption struct{ Enabled bool }

// KeepAliveOption toggles SO_KEEPALIVE.
type KeepAliveOption struct{ Enabled bool }

// ReceiveBufferOption sets SO_RCVBUF in bytes.
type ReceiveBufferOption struct{ Bytes int }

// SendBufferOption sets SO_SNDBUF in bytes.
type SendBufferOption struct{ Bytes int }

// LingerOption sets SO_LINGER. A negative value disables lingering.
type LingerOption struct{ Seconds int }

// ReuseAddrOption toggles SO_REUSEADDR.
type ReuseAddrOption struct{ Enabled bool }

// ReusePortOption toggles SO_REUSEPORT.
type ReusePortOption struct{ Enabled bool }

// NoDelay disables Nagle's algorithm when enabled.
func NoDelay(enabled bool) Configurator { return NoDelayOption{Enabled: enabled} }

// KeepAlive enables TCP keep-alive probes.
func KeepAlive(enabled bool) Configurator { return KeepAliveOption{Enabled: enabled} }

// ReceiveBuffer requests a kernel receive buffer of the given size.
func ReceiveBuffer(bytes int) Configurator { return ReceiveBufferOption{Bytes: bytes} }

// SendBuffer requests a kernel send buffer of the given size.
func SendBuffer(bytes int) Configurator { return SendBufferOption{Bytes: bytes} }

// Linger sets the close linger timeout.
func Linger(seconds int) Configurator { return LingerOption{Seconds: seconds} }

// ReuseAddr allows rebinding an address in TIME_WAIT.
func ReuseAddr(enabled bool) Configurator { return ReuseAddrOption{Enabled: enabled} }

// ReusePort allows several sockets to bind the same port.
func ReusePort(enabled bool) Configurator { return ReusePortOption{Enabled: enabled} }

func (o NoDelayOption) String() string { return fmt.Sprintf("tcp_nodelay=%t", o.Enabled) }

func (o KeepAliveOption) String() string { return fmt.Sprintf("so_keepalive=%t", o.Enabled) }

func (o ReceiveBufferOption) String() string { return fmt.Sprintf("so_rcvbuf=%d", o.Bytes) }

func (o SendBufferOption) String() string { return fmt.Sprintf("so_sndbuf=%d", o.Bytes) }

func (o LingerOption) String() string { return fmt.Sprintf("so_linger=%d", o.Seconds) }

func (o ReuseAddrOption) String() string { return fmt.Sprintf("so_reuseaddr=%t", o.Enabled) }

func (o ReusePortOption) String() string { return fmt.Sprintf("so_reuseport=%t", o.Enabled) }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Settings is the declarative form of the built-in configurators, used by
// bindings files and environment configuration. Nil fields are left alone.
type Settings struct {
	NoDelay       *bool `yaml:"no_delay"`
	KeepAlive     *bool `yaml:"keep_alive"`
	ReceiveBuffer int   `yaml:"receive_buffer"`
	SendBuffer    int   `yaml:"send_buffer"`
	Linger        *int  `yaml:"linger"`
	ReuseAddr     *bool `yaml:"reuse_addr"`
	ReusePort     *bool `yaml:"reuse_port"`
}

// Validate rejects negative buffer sizes and linger timeouts wider than
// 32 bits.
func (s Settings) Validate() error {
	if s.ReceiveBuffer < 0 {
		return fmt.Errorf("receive_buffer must not be negative, got %d", s.ReceiveBuffer)
	}
	if s.SendBuffer < 0 {
		return fmt.Errorf("send_buffer must not be negative, got %d", s.SendBuffer)
	}
	if s.Linger != nil && int64(*s.Linger) > math.MaxInt32 {
		return fmt.Errorf("%w: linger must not exceed %d, got %d", ErrLingerRange, math.MaxInt32, *s.Linger)
	}
	return nil
}

// Configurators expands the settings in a fixed order.
func (s Settings) Configurators() []Configurator {
	var out []Configurator
	if s.ReuseAddr != nil {
		out = append(out, ReuseAddr(*s.ReuseAddr))
	}
	if s.ReusePort != nil {
		out = append(out, ReusePort(*s.ReusePort))
	}
	if s.NoDelay != nil {
		out = append(out, NoDelay(*s.NoDelay))
	}
	if s.KeepAlive != nil {
		out = append(out, KeepAlive(*s.KeepAlive))
	}
	if s.ReceiveBuffer > 0 {
		out = append(out, ReceiveBuffer(s.ReceiveBuffer))
	}
	if s.SendBuffer > 0 {
		out = append(out, SendBuffer(s.SendBuffer))
	}
	if s.Linger != nil {
		out = append(out, Linger(*s.Linger))
	}
	return out
}
