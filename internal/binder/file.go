package binder

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"

	"github.com/GriffinCanCode/httpbinder/internal/httpclient"
	"github.com/GriffinCanCode/httpbinder/internal/shared/validation"
	"github.com/GriffinCanCode/httpbinder/internal/socket"
)

// File is a declarative list of client bindings.
//
//	clients:
//	  - name: billing
//	    aliases: [payments]
//	    tracing: true
//	    headers:
//	      X-Team: core
//	    socket:
//	      no_delay: true
//	    defaults:
//	      max_retries: 5
//	      request_timeout: 10s
type File struct {
	Clients []ClientSpec `yaml:"clients"`
}

// ClientSpec is one client entry. Qualifier defaults to Name.
type ClientSpec struct {
	Name        string            `yaml:"name"`
	Qualifier   string            `yaml:"qualifier"`
	Aliases     []string          `yaml:"aliases"`
	Tracing     bool              `yaml:"tracing"`
	PrivatePool bool              `yaml:"private_pool"`
	Headers     map[string]string `yaml:"headers"`
	Socket      socket.Settings   `yaml:"socket"`
	Defaults    DefaultsSpec      `yaml:"defaults"`
}

// DefaultsSpec overrides client configuration defaults. Durations use
// time.ParseDuration syntax. Unset fields keep the built-in default.
type DefaultsSpec struct {
	ConnectTimeout          string   `yaml:"connect_timeout"`
	RequestTimeout          string   `yaml:"request_timeout"`
	IdleTimeout             string   `yaml:"idle_timeout"`
	MaxConnectionsPerServer *int     `yaml:"max_connections_per_server"`
	MaxRetries              *int     `yaml:"max_retries"`
	RequestsPerSecond       *float64 `yaml:"requests_per_second"`
	FollowRedirects         *bool    `yaml:"follow_redirects"`
	UserAgent               string   `yaml:"user_agent"`
	PoolSize                *int     `yaml:"pool_size"`
}

// LoadFile reads and validates a bindings file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bindings file: %w", err)
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("bindings file %s: %w", path, err)
	}
	return f, nil
}

// ParseFile decodes and validates a bindings document. Unknown keys are
// rejected.
func ParseFile(data []byte) (*File, error) {
	var f File
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
			return nil, fmt.Errorf("decode bindings: %w", err)
		}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate reports every invalid entry.
func (f *File) Validate() error {
	var result *multierror.Error

	seen := make(map[string]string)
	claim := func(owner, q, field string) {
		if err := validation.ValidateQualifier(q, field); err != nil {
			result = multierror.Append(result, fmt.Errorf("client %s: %w", owner, err))
			return
		}
		if prev, ok := seen[q]; ok {
			result = multierror.Append(result, fmt.Errorf("%w: %s (clients %s and %s)", ErrDuplicateBinding, q, prev, owner))
			return
		}
		seen[q] = owner
	}

	for i, c := range f.Clients {
		if err := validation.ValidateName(c.Name, "name"); err != nil {
			result = multierror.Append(result, fmt.Errorf("client %d: %w", i, err))
			continue
		}
		claim(c.Name, string(c.qualifier()), "qualifier")
		for _, a := range c.Aliases {
			claim(c.Name, a, "alias")
		}
		for k, v := range c.Headers {
			if err := validation.ValidateHeader(k, v); err != nil {
				result = multierror.Append(result, fmt.Errorf("client %s: %w", c.Name, err))
			}
		}
		if err := c.Socket.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("client %s socket: %w", c.Name, err))
		}
		if _, err := c.Defaults.apply(); err != nil {
			result = multierror.Append(result, fmt.Errorf("client %s defaults: %w", c.Name, err))
		}
	}

	return result.ErrorOrNil()
}

// Apply registers every client through b.
func (f *File) Apply(b *Binder) error {
	if err := f.Validate(); err != nil {
		return err
	}
	for _, c := range f.Clients {
		builder := b.BindClient(c.Name, c.qualifier())
		for _, a := range c.Aliases {
			builder.WithAlias(httpclient.Qualifier(a))
		}
		if c.Tracing {
			builder.WithTracing()
		}
		if len(c.Headers) > 0 {
			builder.WithFilterInstance(httpclient.StaticHeaders(c.Headers))
		}
		for _, cfg := range c.Socket.Configurators() {
			builder.WithSocketConfigurator(cfg)
		}
		if c.PrivatePool {
			builder.WithPrivateIOPool()
		}
		defaults, _ := c.Defaults.apply()
		if defaults != nil {
			builder.WithConfigDefaults(defaults)
		}
	}
	return nil
}

func (c ClientSpec) qualifier() httpclient.Qualifier {
	if c.Qualifier != "" {
		return httpclient.Qualifier(c.Qualifier)
	}
	return httpclient.Qualifier(c.Name)
}

// apply turns the overrides into a ConfigDefaults. It returns nil when nothing
// is overridden.
func (d DefaultsSpec) apply() (httpclient.ConfigDefaults, error) {
	var steps []httpclient.ConfigDefaults
	var result *multierror.Error

	duration := func(field, value string, set func(*httpclient.Config, time.Duration)) {
		if value == "" {
			return
		}
		v, err := time.ParseDuration(value)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", field, err))
			return
		}
		steps = append(steps, func(cfg *httpclient.Config) { set(cfg, v) })
	}
	duration("connect_timeout", d.ConnectTimeout, func(cfg *httpclient.Config, v time.Duration) { cfg.ConnectTimeout = v })
	duration("request_timeout", d.RequestTimeout, func(cfg *httpclient.Config, v time.Duration) { cfg.RequestTimeout = v })
	duration("idle_timeout", d.IdleTimeout, func(cfg *httpclient.Config, v time.Duration) { cfg.IdleTimeout = v })

	if d.MaxConnectionsPerServer != nil {
		v := *d.MaxConnectionsPerServer
		steps = append(steps, func(cfg *httpclient.Config) { cfg.MaxConnectionsPerServer = v })
	}
	if d.MaxRetries != nil {
		v := *d.MaxRetries
		steps = append(steps, func(cfg *httpclient.Config) { cfg.MaxRetries = v })
	}
	if d.RequestsPerSecond != nil {
		v := *d.RequestsPerSecond
		steps = append(steps, func(cfg *httpclient.Config) { cfg.RequestsPerSecond = v })
	}
	if d.FollowRedirects != nil {
		v := *d.FollowRedirects
		steps = append(steps, func(cfg *httpclient.Config) { cfg.FollowRedirects = v })
	}
	if d.UserAgent != "" {
		v := d.UserAgent
		steps = append(steps, func(cfg *httpclient.Config) { cfg.UserAgent = v })
	}
	if d.PoolSize != nil {
		v := *d.PoolSize
		steps = append(steps, func(cfg *httpclient.Config) { cfg.PoolSize = v })
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, nil
	}
	return func(cfg *httpclient.Config) {
		for _, step := range steps {
			step(cfg)
		}
	}, nil
}
