package binder

import (
	"github.com/GriffinCanCode/httpbinder/internal/httpclient"
	"github.com/GriffinCanCode/httpbinder/internal/socket"
)

// Binder is the entry point used by wiring code to register clients.
type Binder struct {
	registry *Registry
}

// New returns a binder installing into registry.
func New(registry *Registry) *Binder {
	httpclient.CheckArgument(registry != nil, "registry is nil")
	return &Binder{registry: registry}
}

// Registry returns the registry the binder installs into.
func (b *Binder) Registry() *Registry { return b.registry }

// BindClient registers client name under qualifier and returns a builder
// for the rest of its configuration. No client is created until the
// qualifier is resolved.
func (b *Binder) BindClient(name string, qualifier httpclient.Qualifier) *BindingBuilder {
	httpclient.CheckArgument(name != "", "client name is empty")
	httpclient.CheckArgument(qualifier != "", "qualifier of client %s is empty", name)

	module := httpclient.NewModule(name, qualifier)
	b.registry.Install(module)

	return &BindingBuilder{
		module:  module,
		filters: b.registry.Filters(qualifier),
		sockets: b.registry.SocketConfigurators(qualifier),
	}
}

// BindingBuilder configures one client binding. Every method returns the
// receiver.
type BindingBuilder struct {
	module  *httpclient.Module
	filters *FilterSet
	sockets *ConfiguratorSet
}

// Module returns the underlying client module.
func (b *BindingBuilder) Module() *httpclient.Module { return b.module }

// WithAlias makes alias resolve to the same client.
func (b *BindingBuilder) WithAlias(alias httpclient.Qualifier) *BindingBuilder {
	httpclient.CheckArgument(alias != "", "alias of client %s is empty", b.module.Name())
	b.module.AddAlias(alias)
	return b
}

// WithAliases calls WithAlias for each element in order. A nil slice is a
// no-op.
func (b *BindingBuilder) WithAliases(aliases []httpclient.Qualifier) *BindingBuilder {
	for _, alias := range aliases {
		b.WithAlias(alias)
	}
	return b
}

// WithConfigDefaults adds a configuration defaults override.
func (b *BindingBuilder) WithConfigDefaults(defaults httpclient.ConfigDefaults) *BindingBuilder {
	httpclient.CheckArgument(defaults != nil, "config defaults of client %s is nil", b.module.Name())
	b.module.WithConfigDefaults(defaults)
	return b
}

// AddFilterBinding reserves a filter slot for the caller to bind.
func (b *BindingBuilder) AddFilterBinding() *FilterBinding {
	return b.filters.AddBinding()
}

// WithFilter adds a filter constructed by factory at resolution time.
func (b *BindingBuilder) WithFilter(factory httpclient.FilterFactory) *BindingBuilder {
	httpclient.CheckArgument(factory != nil, "filter factory of client %s is nil", b.module.Name())
	b.AddFilterBinding().To(factory)
	return b
}

// WithFilterInstance adds an already constructed filter.
func (b *BindingBuilder) WithFilterInstance(filter httpclient.Filter) *BindingBuilder {
	httpclient.CheckArgument(filter != nil, "filter of client %s is nil", b.module.Name())
	b.AddFilterBinding().ToInstance(filter)
	return b
}

// WithSocketConfigurator adds a socket configurator.
func (b *BindingBuilder) WithSocketConfigurator(c socket.Configurator) *BindingBuilder {
	httpclient.CheckArgument(c != nil, "socket configurator of client %s is nil", b.module.Name())
	b.sockets.Add(c)
	return b
}

// WithTracing adds the trace-token filter.
func (b *BindingBuilder) WithTracing() *BindingBuilder {
	return b.WithFilter(httpclient.NewTraceTokenFilter)
}

// WithPrivateIOPool gives the client its own I/O pool.
func (b *BindingBuilder) WithPrivateIOPool() *BindingBuilder {
	b.module.WithPrivateIOPool()
	return b
}
