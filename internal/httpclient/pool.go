package httpclient

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/semaphore"

	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/monitoring"
)

// SharedPoolName names the registry-wide pool.
const SharedPoolName = "shared"

// IOPool bounds the number of requests holding connection I/O at once. A
// slot is taken before the round trip and given back when the response
// body is closed.
type IOPool struct {
	name     string
	size     int64
	sem      *semaphore.Weighted
	inFlight atomic.Int64
	closed   atomic.Bool
	gauge    prometheus.Gauge
}

// NewIOPool creates a pool with size slots. metrics may be nil.
func NewIOPool(name string, size int, metrics *monitoring.Metrics) *IOPool {
	CheckArgument(name != "", "pool name is empty")
	CheckArgument(size > 0, "pool %s size must be positive, got %d", name, size)

	p := &IOPool{name: name, size: int64(size), sem: semaphore.NewWeighted(int64(size))}
	if metrics != nil {
		p.gauge = metrics.PoolInFlight.WithLabelValues(name)
	}
	return p
}

// Name returns the pool name.
func (p *IOPool) Name() string { return p.name }

// Size returns the number of slots.
func (p *IOPool) Size() int { return int(p.size) }

// InFlight returns the number of held slots.
func (p *IOPool) InFlight() int { return int(p.inFlight.Load()) }

// Acquire blocks until a slot is free or ctx is done.
func (p *IOPool) Acquire(ctx context.Context) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.track(1)
	return nil
}

// Release returns a slot.
func (p *IOPool) Release() {
	p.track(-1)
	p.sem.Release(1)
}

// Close rejects new acquisitions. Held slots are still released normally.
func (p *IOPool) Close() {
	p.closed.Store(true)
}

func (p *IOPool) track(delta int64) {
	n := p.inFlight.Add(delta)
	if p.gauge != nil {
		p.gauge.Set(float64(n))
	}
}

type poolTransport struct {
	pool *IOPool
	next http.RoundTripper
}

func (t *poolTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.pool.Acquire(req.Context()); err != nil {
		closeBody(req)
		return nil, err
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.pool.Release()
		return nil, err
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		t.pool.Release()
		return resp, nil
	}
	resp.Body = &releasingBody{ReadCloser: resp.Body, release: t.pool.Release}
	return resp, nil
}

type releasingBody struct {
	io.ReadCloser
	once    sync.Once
	release func()
}

func (b *releasingBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.release)
	return err
}
