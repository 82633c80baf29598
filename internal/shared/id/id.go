// Package id generates the identifiers carried through client requests.
//
// Identifiers are prefixed ULIDs: lexicographically sortable by creation
// time and readable in logs ("trc_01J...", "span_01J...").
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	TracePrefix = "trc"
	SpanPrefix  = "span"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(nil)
	})
	return defaultGenerator
}

// NewGenerator creates a generator. A nil entropy source selects a monotonic
// reader over crypto/rand; tests pass a deterministic reader.
func NewGenerator(entropy io.Reader) *Generator {
	if entropy == nil {
		entropy = ulid.Monotonic(rand.Reader, 0)
	}
	return &Generator{entropy: entropy}
}

// New returns a fresh ULID.
func (g *Generator) New() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// WithPrefix returns "<prefix>_<ulid>".
func (g *Generator) WithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.New().String())
}

// NewTraceID returns a prefixed trace identifier.
func NewTraceID() string {
	return Default().WithPrefix(TracePrefix)
}

// NewSpanID returns a prefixed span identifier.
func NewSpanID() string {
	return Default().WithPrefix(SpanPrefix)
}

// Valid reports whether s is a ULID, optionally preceded by "<prefix>_".
func Valid(s string) bool {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	_, err := ulid.ParseStrict(s)
	return err == nil
}
