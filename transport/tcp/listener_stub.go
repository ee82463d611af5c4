//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import "github.com/momentics/hioload-tcp/api"

var errUnsupported = api.NewError(api.KindNotSupported, "tcp", api.ErrNotSupported)

// Listener is unavailable on this platform.
type Listener struct{ cfg ListenConfig }

func NewListener(cfg ListenConfig) *Listener { return &Listener{cfg: cfg} }

func (l *Listener) FD() int                      { return -1 }
func (l *Listener) Create() error                { return errUnsupported }
func (l *Listener) Bind() error                  { return errUnsupported }
func (l *Listener) Listen() error                { return errUnsupported }
func (l *Listener) Accept() (int, string, error) { return -1, "", errUnsupported }
func (l *Listener) Port() (int, error)           { return 0, errUnsupported }
func (l *Listener) Close() error                 { return nil }

func Read(int, []byte) (int, error)  { return 0, errUnsupported }
func Write(int, []byte) (int, error) { return 0, errUnsupported }
func CloseFD(int) error              { return errUnsupported }
