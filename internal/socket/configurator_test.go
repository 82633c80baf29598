package socket

import (
	"errors"
	"math"
	"net"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) configurator(label string, err error) Configurator {
	return Func(func(syscall.RawConn) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, label)
		return err
	})
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestChainAppliesInOrder(t *testing.T) {
	rec := &recorder{}
	c := Chain(rec.configurator("a", nil), nil, rec.configurator("b", nil), rec.configurator("c", nil))

	require.NoError(t, c.Apply(nil))
	assert.Equal(t, []string{"a", "b", "c"}, rec.snapshot())
}

func TestChainStopsAtFirstError(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	c := Chain(rec.configurator("a", nil), rec.configurator("b", boom), rec.configurator("c", nil))

	err := c.Apply(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "socket configurator 1")
	assert.Equal(t, []string{"a", "b"}, rec.snapshot())
}

func TestDialerControlNilWhenEmpty(t *testing.T) {
	assert.Nil(t, DialerControl(nil))
	assert.Nil(t, DialerControl([]Configurator{}))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "tcp_nodelay=true", Describe(NoDelay(true)))
	assert.Equal(t, "so_rcvbuf=4096", Describe(ReceiveBuffer(4096)))
	assert.Equal(t, "socket.Func", Describe(Func(func(syscall.RawConn) error { return nil })))
}

func TestSettingsConfigurators(t *testing.T) {
	yes := true
	no := false
	linger := 0

	t.Run("empty settings produce nothing", func(t *testing.T) {
		assert.Empty(t, Settings{}.Configurators())
	})

	t.Run("fields expand in fixed order", func(t *testing.T) {
		s := Settings{
			NoDelay:       &yes,
			KeepAlive:     &no,
			ReceiveBuffer: 1024,
			SendBuffer:    2048,
			Linger:        &linger,
			ReuseAddr:     &yes,
		}

		var got []string
		for _, c := range s.Configurators() {
			got = append(got, Describe(c))
		}
		assert.Equal(t, []string{
			"so_reuseaddr=true",
			"tcp_nodelay=true",
			"so_keepalive=false",
			"so_rcvbuf=1024",
			"so_sndbuf=2048",
			"so_linger=0",
		}, got)
	})

	t.Run("negative buffers are rejected", func(t *testing.T) {
		assert.Error(t, Settings{ReceiveBuffer: -1}.Validate())
		assert.Error(t, Settings{SendBuffer: -1}.Validate())
		assert.NoError(t, Settings{ReceiveBuffer: 1}.Validate())
	})

	t.Run("linger must fit 32 bits", func(t *testing.T) {
		tooLong := int(int64(math.MaxInt32) + 1)
		assert.ErrorIs(t, Settings{Linger: &tooLong}.Validate(), ErrLingerRange)

		longest := math.MaxInt32
		assert.NoError(t, Settings{Linger: &longest}.Validate())
	})
}

func TestApplyConnRejectsNil(t *testing.T) {
	err := ApplyConn(nil, NoDelay(true))
	assert.ErrorIs(t, err, syscall.EINVAL)
}

func TestListenerAcceptsDialsWithConfigurators(t *testing.T) {
	rec := &recorder{}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	d := &net.Dialer{Control: DialerControl([]Configurator{rec.configurator("first", nil), rec.configurator("second", nil)})}
	conn, err := d.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	conn.Close()

	assert.Equal(t, []string{"first", "second"}, rec.snapshot())
}

func TestDialFailsWhenConfiguratorFails(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	boom := errors.New("refused by configurator")
	d := &net.Dialer{Control: DialerControl([]Configurator{Func(func(syscall.RawConn) error { return boom })})}

	_, err = d.Dial("tcp", ln.Addr().String())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
