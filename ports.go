// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package trisim

import "sync"

// MaxPort is the highest valid port index.
//
const MaxPort = 0xff

// Ports is the external boundary of a circuit. ReadPort is called by ExternIn
// instructions, WritePort by ExternOut ones. Both may be called concurrently
// from several workers during a phase.
//
type Ports interface {
	ReadPort(port int) TriBool
	WritePort(port int, v TriBool)
}

// A Bank is a simple Ports implementation backed by two arrays of rails, one
// for inputs and one for outputs. Reading or writing a port index out of range
// reads Floating or is a no-op.
//
type Bank struct {
	mu  sync.Mutex
	in  []TriBool
	out []TriBool
}

// NewBank returns a new Bank with n input and n output ports, all floating.
//
func NewBank(n int) *Bank {
	return &Bank{
		in:  make([]TriBool, n),
		out: make([]TriBool, n),
	}
}

// SetIn sets the value of input port p.
//
func (b *Bank) SetIn(p int, v TriBool) {
	b.mu.Lock()
	if p >= 0 && p < len(b.in) {
		b.in[p] = v
	}
	b.mu.Unlock()
}

// In returns the value of input port p.
//
func (b *Bank) In(p int) TriBool {
	return b.ReadPort(p)
}

// Out returns the value last written to output port p.
//
func (b *Bank) Out(p int) TriBool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p < 0 || p >= len(b.out) {
		return Floating
	}
	return b.out[p]
}

// ReadPort implements Ports.
//
func (b *Bank) ReadPort(p int) TriBool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p < 0 || p >= len(b.in) {
		return Floating
	}
	return b.in[p]
}

// WritePort implements Ports.
//
func (b *Bank) WritePort(p int, v TriBool) {
	b.mu.Lock()
	if p >= 0 && p < len(b.out) {
		b.out[p] = v
	}
	b.mu.Unlock()
}
