// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package trisim

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A TriBool is the state of a single rail: driven low, driven high or
// floating (undriven). The zero value is Floating.
//
type TriBool uint8

// Rail states.
//
const (
	Floating TriBool = iota
	Low
	High
)

// Bool returns the driven TriBool for b.
//
func Bool(b bool) TriBool {
	if b {
		return High
	}
	return Low
}

// Driven returns true if t is not Floating.
//
func (t TriBool) Driven() bool { return t != Floating }

// Value returns the logic value of t. ok is false if t is floating.
//
func (t TriBool) Value() (v bool, ok bool) {
	return t == High, t != Floating
}

func (t TriBool) String() string {
	switch t {
	case Low:
		return "0"
	case High:
		return "1"
	case Floating:
		return "Z"
	}
	return "TriBool(" + strconv.Itoa(int(t)) + ")"
}

// ParseTriBool parses a rail state. Accepted values are 0, 1, z, false, true,
// low, high and floating (case insensitive).
//
func ParseTriBool(s string) (TriBool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "false", "low":
		return Low, nil
	case "1", "true", "high":
		return High, nil
	case "z", "floating":
		return Floating, nil
	}
	return Floating, errors.New("invalid rail state " + s)
}

// Data is a dual rail signal. Both rails are always written together.
//
type Data struct {
	A, B TriBool
}

// Rail returns the state of rail r.
//
func (d Data) Rail(r Rail) TriBool {
	if r == RailB {
		return d.B
	}
	return d.A
}

func (d Data) String() string {
	return "(" + d.A.String() + "," + d.B.String() + ")"
}

// Rail identifies one of the two rails of a Data.
//
type Rail uint8

// Rails.
//
const (
	RailA Rail = iota
	RailB
)

func (r Rail) String() string {
	if r == RailB {
		return "B"
	}
	return "A"
}

// Phase is one of the two alternating evaluation half-cycles.
//
type Phase uint8

// Phases.
//
const (
	Even Phase = iota
	Odd
)

// Opposite returns the other phase.
//
func (p Phase) Opposite() Phase { return p ^ 1 }

func (p Phase) String() string {
	if p == Odd {
		return "odd"
	}
	return "even"
}

// A PhasedValue is a rail state tagged with the phase that wrote it.
//
type PhasedValue struct {
	Value TriBool
	Phase Phase
}

// ValidIn returns true if v may be read as an input during phase p, that is
// if it was written during the opposite phase.
//
func (v PhasedValue) ValidIn(p Phase) bool {
	return v.Phase != p
}

// A Node holds the two rails resident at a grid location.
//
type Node struct {
	IA, IB PhasedValue
}

// Data returns the rails of n.
//
func (n Node) Data() Data {
	return Data{n.IA.Value, n.IB.Value}
}

// Locale is a signed grid coordinate.
//
type Locale struct {
	Lat, Lon int
}

// Add returns the component-wise sum of l and d.
//
func (l Locale) Add(d Locale) Locale {
	return Locale{l.Lat + d.Lat, l.Lon + d.Lon}
}

func (l Locale) String() string {
	return "[" + strconv.Itoa(l.Lat) + "," + strconv.Itoa(l.Lon) + "]"
}
