package binder

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/httpbinder/internal/httpclient"
	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/logging"
	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/httpbinder/internal/socket"
)

// DefaultSharedPoolSize is the shared I/O pool size when none is given.
const DefaultSharedPoolSize = 200

// Registry holds client modules and their multi-bindings, and builds
// clients on demand.
type Registry struct {
	logger         *logging.Logger
	metrics        *monitoring.Metrics
	sharedPoolSize int

	mu         sync.Mutex
	modules    []*httpclient.Module
	filters    map[httpclient.Qualifier]*FilterSet
	sockets    map[httpclient.Qualifier]*ConfiguratorSet
	clients    map[*httpclient.Module]*httpclient.Client
	sharedPool *httpclient.IOPool
	frozen     bool
	closed     bool
}

// Option customizes a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *logging.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics enables client and pool metrics.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(r *Registry) { r.metrics = metrics }
}

// WithSharedPoolSize sizes the I/O pool shared by clients without a private
// pool.
func WithSharedPoolSize(size int) Option {
	return func(r *Registry) {
		if size > 0 {
			r.sharedPoolSize = size
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger:         logging.Nop(),
		sharedPoolSize: DefaultSharedPoolSize,
		filters:        make(map[httpclient.Qualifier]*FilterSet),
		sockets:        make(map[httpclient.Qualifier]*ConfiguratorSet),
		clients:        make(map[*httpclient.Module]*httpclient.Client),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("binder")
	return r
}

// Install registers a client module.
func (r *Registry) Install(m *httpclient.Module) {
	httpclient.CheckArgument(m != nil, "module is nil")

	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkMutable("install client " + m.Name())

	r.modules = append(r.modules, m)
	r.logger.Debug("client module installed",
		zap.String("client", m.Name()),
		zap.String("qualifier", string(m.Qualifier())),
	)
}

// Filters returns the filter multi-binding for qualifier, creating it on
// first use.
func (r *Registry) Filters(q httpclient.Qualifier) *FilterSet {
	httpclient.CheckArgument(q != "", "qualifier is empty")

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.filters[q]
	if !ok {
		set = &FilterSet{qualifier: q, frozen: r.frozen}
		r.filters[q] = set
	}
	return set
}

// SocketConfigurators returns the socket-configurator multi-binding for
// qualifier, creating it on first use.
func (r *Registry) SocketConfigurators(q httpclient.Qualifier) *ConfiguratorSet {
	httpclient.CheckArgument(q != "", "qualifier is empty")

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sockets[q]
	if !ok {
		set = &ConfiguratorSet{qualifier: q, frozen: r.frozen}
		r.sockets[q] = set
	}
	return set
}

// Modules returns the installed modules in installation order.
func (r *Registry) Modules() []*httpclient.Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*httpclient.Module(nil), r.modules...)
}

// Client resolves the client bound to q (a primary qualifier or an alias).
// The first call freezes the registry.
func (r *Registry) Client(q httpclient.Qualifier) (*httpclient.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}
	r.freezeLocked()

	m, err := r.lookupLocked(q)
	if err != nil {
		return nil, err
	}
	if c, ok := r.clients[m]; ok {
		return c, nil
	}

	c, err := r.buildLocked(m)
	if err != nil {
		return nil, err
	}
	r.clients[m] = c

	r.logger.Info("client resolved",
		zap.String("client", m.Name()),
		zap.String("qualifier", string(q)),
		zap.String("pool", c.Pool().Name()),
	)
	return c, nil
}

// MustClient is Client for wiring code that cannot continue without it.
func (r *Registry) MustClient(q httpclient.Qualifier) *httpclient.Client {
	c, err := r.Client(q)
	if err != nil {
		panic(err)
	}
	return c
}

// BindingInfo describes one installed client binding.
type BindingInfo struct {
	Name                string   `json:"name"`
	Qualifier           string   `json:"qualifier"`
	Aliases             []string `json:"aliases,omitempty"`
	Filters             int      `json:"filters"`
	SocketConfigurators []string `json:"socket_configurators,omitempty"`
	PrivatePool         bool     `json:"private_pool"`
	Resolved            bool     `json:"resolved"`
	BreakerState        string   `json:"breaker_state,omitempty"`
	Pool                string   `json:"pool,omitempty"`
	PoolInFlight        int      `json:"pool_in_flight,omitempty"`
}

// Bindings lists installed clients in installation order. It does not
// resolve anything.
func (r *Registry) Bindings() []BindingInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]BindingInfo, 0, len(r.modules))
	for _, m := range r.modules {
		info := BindingInfo{
			Name:        m.Name(),
			Qualifier:   string(m.Qualifier()),
			PrivatePool: m.PrivateIOPool(),
		}
		for _, a := range m.Aliases() {
			info.Aliases = append(info.Aliases, string(a))
		}
		if set, ok := r.filters[m.Qualifier()]; ok {
			info.Filters = set.Len()
		}
		if set, ok := r.sockets[m.Qualifier()]; ok {
			for _, c := range set.List() {
				info.SocketConfigurators = append(info.SocketConfigurators, socket.Describe(c))
			}
		}
		if c, ok := r.clients[m]; ok {
			info.Resolved = true
			info.BreakerState = c.BreakerState().String()
			info.Pool = c.Pool().Name()
			info.PoolInFlight = c.Pool().InFlight()
		}
		out = append(out, info)
	}
	return out
}

// Validate checks every binding without constructing clients: qualifiers
// must be unique, filter slots bound and configurations loadable. Filters
// and socket configurators must be keyed by a primary qualifier, since
// aliases only resolve clients.
func (r *Registry) Validate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result *multierror.Error

	owners := make(map[httpclient.Qualifier][]string)
	for _, m := range r.modules {
		for _, q := range m.Qualifiers() {
			owners[q] = append(owners[q], m.Name())
		}
	}
	qualifiers := make([]string, 0, len(owners))
	for q := range owners {
		qualifiers = append(qualifiers, string(q))
	}
	sort.Strings(qualifiers)
	for _, q := range qualifiers {
		if names := owners[httpclient.Qualifier(q)]; len(names) > 1 {
			result = multierror.Append(result, fmt.Errorf("%w: %s (clients %v)", ErrDuplicateBinding, q, names))
		}
	}

	for _, m := range r.modules {
		if set, ok := r.filters[m.Qualifier()]; ok {
			for _, i := range set.unbound() {
				result = multierror.Append(result, fmt.Errorf("client %s filter %d: %w", m.Name(), i, ErrUnboundFilter))
			}
		}
		if _, err := m.LoadConfig(); err != nil {
			result = multierror.Append(result, fmt.Errorf("client %s: %w", m.Name(), err))
		}
	}

	primaries := make(map[httpclient.Qualifier]bool, len(r.modules))
	for _, m := range r.modules {
		primaries[m.Qualifier()] = true
	}
	detached := func(kind string, q httpclient.Qualifier) {
		if owner := owners[q]; len(owner) > 0 {
			result = multierror.Append(result, fmt.Errorf("%w: %s bound to alias %s of client %s", ErrDetachedBinding, kind, q, owner[0]))
			return
		}
		result = multierror.Append(result, fmt.Errorf("%w: %s bound to %s", ErrDetachedBinding, kind, q))
	}
	for _, q := range sortedKeys(r.filters) {
		if !primaries[q] && r.filters[q].Len() > 0 {
			detached("filters", q)
		}
	}
	for _, q := range sortedKeys(r.sockets) {
		if !primaries[q] && r.sockets[q].Len() > 0 {
			detached("socket configurators", q)
		}
	}

	return result.ErrorOrNil()
}

// Close closes every resolved client and the shared pool. Further
// resolution fails with ErrRegistryClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var result *multierror.Error
	for _, m := range r.modules {
		c, ok := r.clients[m]
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close client %s: %w", m.Name(), err))
		}
	}
	if r.sharedPool != nil {
		r.sharedPool.Close()
	}

	r.logger.Info("registry closed", zap.Int("clients", len(r.clients)))
	return result.ErrorOrNil()
}

func (r *Registry) checkMutable(what string) {
	if r.frozen {
		panic(fmt.Errorf("%w: %w: %s", httpclient.ErrPrecondition, httpclient.ErrFrozen, what))
	}
}

func (r *Registry) freezeLocked() {
	if r.frozen {
		return
	}
	r.frozen = true
	for _, m := range r.modules {
		m.Freeze()
	}
	for _, s := range r.filters {
		s.freeze()
	}
	for _, s := range r.sockets {
		s.freeze()
	}
}

func (r *Registry) lookupLocked(q httpclient.Qualifier) (*httpclient.Module, error) {
	var matches []*httpclient.Module
	for _, m := range r.modules {
		for _, candidate := range m.Qualifiers() {
			if candidate == q {
				matches = append(matches, m)
				break
			}
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrNotBound, q)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name()
		}
		return nil, fmt.Errorf("%w: %q (clients %v)", ErrDuplicateBinding, q, names)
	}
}

func (r *Registry) buildLocked(m *httpclient.Module) (*httpclient.Client, error) {
	cfg, err := m.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("client %s: %w", m.Name(), err)
	}

	var filters []httpclient.Filter
	if set, ok := r.filters[m.Qualifier()]; ok {
		if filters, err = set.resolve(); err != nil {
			return nil, fmt.Errorf("client %s: %w", m.Name(), err)
		}
	}

	var configurators []socket.Configurator
	if set, ok := r.sockets[m.Qualifier()]; ok {
		configurators = set.List()
	}

	var pool *httpclient.IOPool
	if !m.PrivateIOPool() {
		if r.sharedPool == nil {
			r.sharedPool = httpclient.NewIOPool(httpclient.SharedPoolName, r.sharedPoolSize, r.metrics)
		}
		pool = r.sharedPool
	}

	return httpclient.New(httpclient.Options{
		Name:                m.Name(),
		Config:              cfg,
		Filters:             filters,
		SocketConfigurators: configurators,
		Pool:                pool,
		Logger:              r.logger,
		Metrics:             r.metrics,
	})
}

func sortedKeys[V any](m map[httpclient.Qualifier]V) []httpclient.Qualifier {
	keys := make([]httpclient.Qualifier, 0, len(m))
	for q := range m {
		keys = append(keys, q)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
