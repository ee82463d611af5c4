// File: internal/registry/registry.go
// Author: momentics <momentics@gmail.com>

package registry

import (
	"fmt"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/pool"
)

// Conn is one accepted client connection. The buffers are owned exclusively
// by the connection and must only be touched from the controller goroutine.
type Conn struct {
	ID     api.ConnID
	FD     int
	Remote string
	Buffer *pool.Buffer
	// Out holds the unsent tail of framed output. While it is non-empty new
	// frames are appended behind it so frames never interleave.
	Out []byte
}

// Registry keeps connections in acceptance order. It is not safe for
// concurrent use.
type Registry struct {
	conns []*Conn
	byID  map[api.ConnID]*Conn
	next  api.ConnID
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byID: make(map[api.ConnID]*Conn)}
}

// Add appends a connection for fd and assigns it a fresh ConnID.
func (r *Registry) Add(fd int, remote string, buf *pool.Buffer) (*Conn, error) {
	for _, c := range r.conns {
		if c.FD == fd {
			return nil, api.NewError(api.KindState, "registry add", fmt.Errorf("%w: fd %d", api.ErrDuplicateHandle, fd))
		}
	}
	r.next++
	c := &Conn{ID: r.next, FD: fd, Remote: remote, Buffer: buf}
	r.conns = append(r.conns, c)
	r.byID[c.ID] = c
	return c, nil
}

// Count is the number of open, not-yet-removed connections.
func (r *Registry) Count() int { return len(r.conns) }

// At returns the connection at position pos.
func (r *Registry) At(pos int) (*Conn, error) {
	if pos < 0 || pos >= len(r.conns) {
		return nil, outOfRange(pos, len(r.conns))
	}
	return r.conns[pos], nil
}

// Lookup returns the connection with the given id.
func (r *Registry) Lookup(id api.ConnID) (*Conn, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Index returns the current position of id, or -1.
func (r *Registry) Index(id api.ConnID) int {
	for i, c := range r.conns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Remove deletes the connection at pos and shifts later positions down.
// The removed connection is returned so the caller can close it.
func (r *Registry) Remove(pos int) (*Conn, error) {
	if pos < 0 || pos >= len(r.conns) {
		return nil, outOfRange(pos, len(r.conns))
	}
	c := r.conns[pos]
	copy(r.conns[pos:], r.conns[pos+1:])
	r.conns[len(r.conns)-1] = nil
	r.conns = r.conns[:len(r.conns)-1]
	delete(r.byID, c.ID)
	return c, nil
}

// RemoveID deletes the connection with the given id.
func (r *Registry) RemoveID(id api.ConnID) (*Conn, error) {
	pos := r.Index(id)
	if pos < 0 {
		return nil, api.NewError(api.KindRange, "registry remove", fmt.Errorf("%w: %s", api.ErrUnknownConn, id))
	}
	return r.Remove(pos)
}

// MaxHandle returns the largest descriptor in the registry, the nfds bound a
// select(2)-style waiter needs. The poll(2) waiters in package reactor take
// the descriptor list from Handles and do not use it.
func (r *Registry) MaxHandle() (int, error) {
	if len(r.conns) == 0 {
		return 0, api.NewError(api.KindState, "registry max handle", api.ErrEmptyRegistry)
	}
	hi := r.conns[0].FD
	for _, c := range r.conns[1:] {
		if c.FD > hi {
			hi = c.FD
		}
	}
	return hi, nil
}

// Handles returns the descriptors in registry order. dst is reused when it
// has enough capacity.
func (r *Registry) Handles(dst []int) []int {
	dst = dst[:0]
	for _, c := range r.conns {
		dst = append(dst, c.FD)
	}
	return dst
}

// IDs returns the connection ids in registry order.
func (r *Registry) IDs() []api.ConnID {
	ids := make([]api.ConnID, len(r.conns))
	for i, c := range r.conns {
		ids[i] = c.ID
	}
	return ids
}

// Drain removes and returns every connection.
func (r *Registry) Drain() []*Conn {
	out := r.conns
	r.conns = nil
	clear(r.byID)
	return out
}

func outOfRange(pos, n int) error {
	return api.NewError(api.KindRange, "registry", fmt.Errorf("%w: position %d, %d clients", api.ErrOutOfRange, pos, n))
}
