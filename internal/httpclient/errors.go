package httpclient

import (
	"errors"
	"fmt"
)

var (
	// ErrPrecondition marks wiring-time misuse such as an empty name or a
	// nil filter. It is raised by panic and never recovered.
	ErrPrecondition = errors.New("precondition violated")

	// ErrFrozen is wrapped into ErrPrecondition when a binding is mutated
	// after its client was resolved.
	ErrFrozen = errors.New("binding is frozen")

	// ErrPoolClosed is returned when acquiring a slot from a closed pool.
	ErrPoolClosed = errors.New("io pool is closed")
)

// CheckArgument panics with ErrPrecondition when ok is false.
func CheckArgument(ok bool, format string, args ...interface{}) {
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...)))
	}
}

func checkNotFrozen(frozen bool, what string) {
	if frozen {
		panic(fmt.Errorf("%w: %w: %s", ErrPrecondition, ErrFrozen, what))
	}
}
