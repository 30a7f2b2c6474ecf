// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package trilib provides a library of reusable program blocks for trisim.
//
// Copyright 2018 Denis Bernard <db047h@gmail.com>
//
// This package is licensed under the MIT license. See license text in the LICENSE file.
//
package trilib

import (
	ts "github.com/db47h/trisim"
)

// Const returns a constant gate.
//
//	Output: (v, v)
//
func Const(v bool) ts.Instruction {
	if v {
		return ts.Simple{Op: ts.Op(ts.Tt)}
	}
	return ts.Simple{Op: ts.Op(ts.Nt)}
}

// Gate returns a gate fed by the node at the given absolute location.
//
//	Inputs: from.A, from.B
//	Output: code(from)
//
func Gate(code ts.DataCode, from ts.Locale) ts.Instruction {
	return ts.Modded{
		Mod: ts.LocaleLatLonOp(from.Lat, from.Lon),
		Op:  ts.Op(code),
	}
}

// Load returns a block that loads input ports a and b onto rails A and B of
// the node at the given location. The node is written during both phases;
// (a, b) is available to Even readers.
//
//	Even: at = (Z, a)
//	Odd:  at = (a, b)
//
// The Odd value is preset to (0, 0) so that Even readers do not see floating
// rails before the first load completes.
//
func Load(at ts.Locale, a, b int) ts.Program {
	var p ts.Program
	p.Place(at, ts.Even, ts.Modded{
		Mod: ts.ExternInOp(a),
		Op:  ts.Op(ts.Dp).Lanes(ts.LaneOff, ts.LaneA),
	})
	p.Place(at, ts.Odd, ts.Modded{
		Mod: ts.ExternInOp(b),
		Op:  ts.Op(ts.Dp).Lanes(ts.LaneB, ts.LaneA),
	})
	p.Preset(at, ts.Odd, ts.Data{A: ts.Low, B: ts.Low})
	return p
}

// Drive returns a block that drives output port with rail r of the node at
// from. The node at from must be written during ph.Opposite(). The block uses
// the node at `at` during both phases.
//
//	ph:            at = (from.r, from.!r)
//	ph.Opposite(): port = at.A
//
func Drive(at ts.Locale, ph ts.Phase, from ts.Locale, r ts.Rail, port int) ts.Program {
	var p ts.Program
	op := ts.Op(ts.Dp)
	if r == ts.RailB {
		op = op.Lanes(ts.LaneB, ts.LaneA)
	}
	p.Place(at, ph, ts.Modded{Mod: ts.LocaleLatLonOp(from.Lat, from.Lon), Op: op})
	p.Place(at, ph.Opposite(), ts.Modded{Mod: ts.ExternOutOp(port), Op: ts.Op(ts.Dp)})
	return p
}

// Width and latency in steps of the arithmetic blocks.
//
const (
	ArithWidth   = 4
	ArithLatency = 5
)

// arith lays out a port to port two-input gate on ArithWidth consecutive
// nodes of a single row.
func arith(code ts.DataCode, at ts.Locale, a, b, s, c int) ts.Program {
	p := Load(at, a, b)
	gate := at.Add(ts.Locale{Lon: 1})
	p.Place(gate, ts.Even, ts.Modded{Mod: ts.JumperLonOp(-1), Op: ts.Op(code)})
	p.Append(Drive(at.Add(ts.Locale{Lon: 2}), ts.Odd, gate, ts.RailA, s))
	p.Append(Drive(at.Add(ts.Locale{Lon: 3}), ts.Odd, gate, ts.RailB, c))
	return p
}

// HalfAdder returns a half adder reading ports a and b and driving ports s and
// c. Outputs are valid ArithLatency steps after the inputs are set, starting
// from an Even step.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = lsb(a + b)
//	          c = msb(a + b)
//
func HalfAdder(at ts.Locale, a, b, s, c int) ts.Program {
	return arith(ts.Add, at, a, b, s, c)
}

// HalfSub returns a half subtractor reading ports a and b and driving ports d
// and bw. Outputs are valid ArithLatency steps after the inputs are set,
// starting from an Even step.
//
//	Inputs: a, b
//	Outputs: d, bw
//	Function: d = a xor b
//	          bw = !a && b
//
func HalfSub(at ts.Locale, a, b, d, bw int) ts.Program {
	return arith(ts.Sub, at, a, b, d, bw)
}
