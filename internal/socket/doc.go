// Package socket configures raw network sockets before and after they connect.
//
// A Configurator performs one side effect on a socket (timeouts, buffer
// sizes, keep-alive, address reuse) and reports the OS error when the
// underlying call fails. Configurators are shared by the HTTP client dialer
// and the admin server listener.
//
// Configurators registered for one client are applied in registration order.
// The first failure stops the chain and aborts the dial.
//
// Example Usage:
//
//	transport := &http.Transport{
//		DialContext: socket.DialContext(&net.Dialer{}, []socket.Configurator{
//			socket.NoDelay(false),
//			socket.ReceiveBuffer(64 << 10),
//		}),
//	}
package socket
