package binder

import "errors"

var (
	ErrNotBound         = errors.New("no client bound to qualifier")
	ErrDuplicateBinding = errors.New("qualifier bound more than once")
	ErrUnboundFilter    = errors.New("filter binding was never bound")
	ErrRegistryClosed   = errors.New("registry is closed")
	ErrDetachedBinding  = errors.New("multi-binding is not keyed by a client's primary qualifier")
)
