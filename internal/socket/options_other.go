//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package socket

import "syscall"

func (o NoDelayOption) Apply(syscall.RawConn) error { return ErrUnsupported }
func (o KeepAliveOption) Apply(syscall.RawConn) error { return ErrUnsupported }
func (o ReceiveBufferOption) Apply(syscall.RawConn) error { return ErrUnsupported }
func (o SendBufferOption) Apply(syscall.RawConn) error { return ErrUnsupported }
func (o LingerOption) Apply(syscall.RawConn) error { return ErrUnsupported }
func (o ReuseAddrOption) Apply(syscall.RawConn) error { return ErrUnsupported }
func (o ReusePortOption) Apply(syscall.RawConn) error { return ErrUnsupported }
