package httpclient

import (
	"strings"
	"sync"
	"unicode"
)

// Qualifier discriminates between client bindings. The empty qualifier is
// treated as absent.
type Qualifier string

func (q Qualifier) String() string { return string(q) }

// Module is the registration record of one named client. It is mutated only
// during wiring; resolving the client freezes it.
type Module struct {
	mu          sync.Mutex
	name        string
	qualifier   Qualifier
	aliases     []Qualifier
	defaults    []ConfigDefaults
	privatePool bool
	frozen      bool
}

// NewModule creates the module for client name bound under qualifier.
func NewModule(name string, qualifier Qualifier) *Module {
	CheckArgument(name != "", "name is empty")
	CheckArgument(qualifier != "", "qualifier is empty")
	return &Module{name: name, qualifier: qualifier}
}

// AddAlias registers another qualifier resolving to the same client.
func (m *Module) AddAlias(alias Qualifier) {
	CheckArgument(alias != "", "alias is empty")

	m.mu.Lock()
	defer m.mu.Unlock()
	checkNotFrozen(m.frozen, "client "+m.name)
	m.aliases = append(m.aliases, alias)
}

// WithConfigDefaults appends a defaults override. Overrides run in the order
// they were added.
func (m *Module) WithConfigDefaults(defaults ConfigDefaults) {
	CheckArgument(defaults != nil, "config defaults is nil")

	m.mu.Lock()
	defer m.mu.Unlock()
	checkNotFrozen(m.frozen, "client "+m.name)
	m.defaults = append(m.defaults, defaults)
}

// WithPrivateIOPool requests a dedicated I/O pool instead of the shared one.
func (m *Module) WithPrivateIOPool() {
	m.mu.Lock()
	defer m.mu.Unlock()
	checkNotFrozen(m.frozen, "client "+m.name)
	m.privatePool = true
}

// Name returns the client name.
func (m *Module) Name() string { return m.name }

// Qualifier returns the primary qualifier.
func (m *Module) Qualifier() Qualifier { return m.qualifier }

// Aliases returns a copy of the alias list in registration order.
func (m *Module) Aliases() []Qualifier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Qualifier(nil), m.aliases...)
}

// Qualifiers returns the primary qualifier followed by the aliases.
func (m *Module) Qualifiers() []Qualifier {
	return append([]Qualifier{m.qualifier}, m.Aliases()...)
}

// PrivateIOPool reports whether a dedicated I/O pool was requested.
func (m *Module) PrivateIOPool() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.privatePool
}

// Freeze rejects further mutation.
func (m *Module) Freeze() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frozen = true
}

// Frozen reports whether the module was frozen.
func (m *Module) Frozen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frozen
}

// EnvPrefix returns the environment prefix for this client's settings:
// the upper-cased name with non-alphanumerics replaced, plus _HTTP_CLIENT.
func (m *Module) EnvPrefix() string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return '_'
	}, m.name)
	return name + "_HTTP_CLIENT"
}

// LoadConfig resolves the client's configuration.
func (m *Module) LoadConfig() (Config, error) {
	m.mu.Lock()
	defaults := append([]ConfigDefaults(nil), m.defaults...)
	m.mu.Unlock()

	return LoadConfig(m.EnvPrefix(), defaults...)
}
