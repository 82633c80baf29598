package binder

import (
	"fmt"
	"sync"

	"github.com/GriffinCanCode/httpbinder/internal/httpclient"
	"github.com/GriffinCanCode/httpbinder/internal/socket"
)

type filterEntry struct {
	factory  httpclient.FilterFactory
	instance httpclient.Filter
}

func (e *filterEntry) bound() bool {
	return e.factory != nil || e.instance != nil
}

// FilterSet is the ordered filter multi-binding of one qualifier.
// Duplicates are kept.
type FilterSet struct {
	qualifier httpclient.Qualifier

	mu      sync.Mutex
	entries []*filterEntry
	frozen  bool
}

// AddBinding reserves the next slot. The slot must be bound with To or
// ToInstance before the client is resolved.
func (s *FilterSet) AddBinding() *FilterBinding {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkMutable()

	entry := &filterEntry{}
	s.entries = append(s.entries, entry)
	return &FilterBinding{set: s, entry: entry}
}

// Len returns the number of slots, bound or not.
func (s *FilterSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *FilterSet) freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
}

func (s *FilterSet) checkMutable() {
	if s.frozen {
		panic(fmt.Errorf("%w: %w: filters of %s", httpclient.ErrPrecondition, httpclient.ErrFrozen, s.qualifier))
	}
}

// unbound returns the positions of slots never bound.
func (s *FilterSet) unbound() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []int
	for i, e := range s.entries {
		if !e.bound() {
			out = append(out, i)
		}
	}
	return out
}

// resolve instantiates the filters in registration order.
func (s *FilterSet) resolve() ([]httpclient.Filter, error) {
	s.mu.Lock()
	entries := append([]*filterEntry(nil), s.entries...)
	s.mu.Unlock()

	filters := make([]httpclient.Filter, 0, len(entries))
	for i, e := range entries {
		switch {
		case e.instance != nil:
			filters = append(filters, e.instance)
		case e.factory != nil:
			f := e.factory()
			if f == nil {
				return nil, fmt.Errorf("filter %d of %s: factory returned nil", i, s.qualifier)
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("filter %d of %s: %w", i, s.qualifier, ErrUnboundFilter)
		}
	}
	return filters, nil
}

// FilterBinding is one reserved slot of a FilterSet.
type FilterBinding struct {
	set   *FilterSet
	entry *filterEntry
}

// To binds the slot to a factory invoked when the client is resolved.
func (b *FilterBinding) To(factory httpclient.FilterFactory) {
	httpclient.CheckArgument(factory != nil, "filter factory is nil")
	b.bind(func(e *filterEntry) { e.factory = factory })
}

// ToInstance binds the slot to an existing filter.
func (b *FilterBinding) ToInstance(filter httpclient.Filter) {
	httpclient.CheckArgument(filter != nil, "filter is nil")
	b.bind(func(e *filterEntry) { e.instance = filter })
}

func (b *FilterBinding) bind(set func(*filterEntry)) {
	b.set.mu.Lock()
	defer b.set.mu.Unlock()
	b.set.checkMutable()
	httpclient.CheckArgument(!b.entry.bound(), "filter binding of %s is already bound", b.set.qualifier)
	set(b.entry)
}

// ConfiguratorSet is the ordered socket-configurator multi-binding of one
// qualifier. Duplicates are kept.
type ConfiguratorSet struct {
	qualifier httpclient.Qualifier

	mu            sync.Mutex
	configurators []socket.Configurator
	frozen        bool
}

// Add appends a configurator instance.
func (s *ConfiguratorSet) Add(c socket.Configurator) {
	httpclient.CheckArgument(c != nil, "socket configurator is nil")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		panic(fmt.Errorf("%w: %w: socket configurators of %s", httpclient.ErrPrecondition, httpclient.ErrFrozen, s.qualifier))
	}
	s.configurators = append(s.configurators, c)
}

// List returns the configurators in registration order.
func (s *ConfiguratorSet) List() []socket.Configurator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]socket.Configurator(nil), s.configurators...)
}

// Len returns the number of configurators.
func (s *ConfiguratorSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.configurators)
}

func (s *ConfiguratorSet) freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
}
