// Package binder registers named HTTP clients through a fluent builder.
//
// A Registry holds client modules and, per qualifier, the ordered filter and
// socket-configurator multi-bindings. Nothing is constructed while wiring:
// clients are built on first resolution, one instance per module, shared by
// the primary qualifier and every alias. The first resolution freezes the
// registry.
//
// Wiring misuse (empty names, nil filters) panics with
// httpclient.ErrPrecondition. Resolution problems (unknown qualifiers,
// duplicate bindings, unbound filter slots, invalid configuration) are
// returned as errors.
//
// Example Usage:
//
//	registry := binder.NewRegistry(binder.WithLogger(logger))
//	binder.New(registry).
//		BindClient("billing", "billing").
//		WithAlias("payments").
//		WithTracing().
//		WithSocketConfigurator(socket.NoDelay(true)).
//		WithConfigDefaults(func(cfg *httpclient.Config) {
//			cfg.MaxRetries = 5
//		})
//
//	client, err := registry.Client("payments")
package binder
