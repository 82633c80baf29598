package socket

import (
	"context"
	"fmt"
	"net"
	"syscall"
)

// DialFunc matches http.Transport.DialContext.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// DialContext returns a dial function applying cfgs through d. The
// configurators run before connect. Options the net package overwrites once
// a TCP connection is established (TCP_NODELAY and SO_KEEPALIVE) are applied
// again to the connected socket, so a configurator that switches them off
// stays in effect.
func DialContext(d *net.Dialer, cfgs []Configurator) DialFunc {
	dialer := *d
	dialer.Control = DialerControl(cfgs)

	var post []Configurator
	for _, c := range cfgs {
		switch o := c.(type) {
		case NoDelayOption:
			post = append(post, o)
		case KeepAliveOption:
			post = append(post, o)
			if !o.Enabled {
				dialer.KeepAlive = -1
			}
		}
	}
	if len(post) == 0 {
		return dialer.DialContext
	}

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		conn, err := dialer.DialContext(ctx, network, address)
		if err != nil {
			return nil, err
		}
		sc, ok := conn.(syscall.Conn)
		if !ok {
			return conn, nil
		}
		if err := ApplyConn(sc, post...); err != nil {
			conn.Close()
			return nil, fmt.Errorf("configure %s connection to %s: %w", network, address, err)
		}
		return conn, nil
	}
}
