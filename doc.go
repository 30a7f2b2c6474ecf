// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package trisim simulates a synchronous fabric of elementary gates laid out on
a grid of nodes.

Signals are dual rail: every node carries two rails, A and B, and each rail is
either driven low, driven high or floating (TriBool). A gate opcode (DataCode)
maps a pair of input rails to a pair of output rails; every opcode has a
precondition on which of its inputs may be floating. Eval reports a violation
as a *PreconditionError: it means that the circuit was built incorrectly.

A gate either gets literal inputs (Simple instruction) or gets its inputs from
an addressing directive (Modded instruction): an absolute grid location
(LocaleLat, LocaleLatLon), a relative one (JumperLat, JumperLon), or an
external port (ExternIn, ExternOut). Lane selectors in the DataOp pick which
of the two resolved sources feeds each input rail.

Evaluation follows a two-phase discipline. Each instruction is scheduled in
the Even or Odd phase and writes its output to its home node. Instructions
running during phase P only see values written during the opposite phase, so
that all instructions of a phase can run concurrently:

	var prog trisim.Program
	prog.Place(trisim.Locale{0, 0}, trisim.Even, trisim.Simple{
		Op: trisim.Op(trisim.Add).With(trisim.Data{trisim.High, trisim.High}),
	})
	c, err := trisim.NewCircuit(0, trisim.Locale{1, 1}, nil, prog)
	if err != nil {
		// handle error
	}
	defer c.Dispose()
	if err = c.Step(); err != nil {
		// handle error
	}
	out := c.Get(trisim.Locale{0, 0}, trisim.Even) // (0,1): sum 0, carry 1

Values persist until overwritten. A location never written during a phase
reads floating.
*/
package trisim
