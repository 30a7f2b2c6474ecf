// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package trisim

import (
	"strconv"

	"github.com/pkg/errors"
)

// A Lane selects which of the two resolved sources of a Route feeds a rail.
//
type Lane uint8

// Lanes. Any other value is invalid.
//
const (
	LaneA   Lane = 0    // Route.Src[0]
	LaneB   Lane = 1    // Route.Src[1]
	LaneOff Lane = 0xff // floating
)

// Valid returns true if l is one of LaneA, LaneB or LaneOff.
//
func (l Lane) Valid() bool {
	return l == LaneA || l == LaneB || l == LaneOff
}

func (l Lane) String() string {
	switch l {
	case LaneA:
		return "A"
	case LaneB:
		return "B"
	case LaneOff:
		return "-"
	}
	return "Lane(" + strconv.Itoa(int(l)) + ")"
}

// A DataOp is a gate opcode together with its input description: literal
// input rails for Simple instructions, lane selectors for Modded ones.
//
type DataOp struct {
	Code  DataCode
	Input Data
	LA    Lane
	LB    Lane
}

// Op returns a DataOp for c with straight lanes: the first source feeds rail
// A and the second feeds rail B.
//
func Op(c DataCode) DataOp {
	return DataOp{Code: c, LA: LaneA, LB: LaneB}
}

// Lanes returns a copy of op with the given lane selectors.
//
func (op DataOp) Lanes(la, lb Lane) DataOp {
	op.LA, op.LB = la, lb
	return op
}

// With returns a copy of op with the given literal input.
//
func (op DataOp) With(in Data) DataOp {
	op.Input = in
	return op
}

func (op DataOp) String() string {
	return op.Code.String() + "<" + op.LA.String() + op.LB.String() + ">"
}

// An Instruction is either a Simple or a Modded gate. Instructions are
// immutable.
//
type Instruction interface {
	DataOp() DataOp
	instruction()
}

// Simple is a bare gate evaluated against its literal input.
//
type Simple struct {
	Op DataOp
}

// DataOp implements Instruction.
//
func (s Simple) DataOp() DataOp { return s.Op }
func (Simple) instruction() {}

// Modded is a gate whose input rails are resolved from an addressing
// directive.
//
type Modded struct {
	Mod ModOp
	Op  DataOp
}

// DataOp implements Instruction.
//
func (m Modded) DataOp() DataOp { return m.Op }
func (Modded) instruction() {}

// Env gives read access to the state visible to an instruction: node rails as
// last written in the opposite phase, and input ports.
//
type Env interface {
	Rail(at Locale, r Rail) TriBool
	ReadPort(port int) TriBool
}

func (r *Route) read(env Env, l Lane) TriBool {
	if l == LaneOff {
		return Floating
	}
	s := r.Src[l&1]
	switch s.Kind {
	case SrcNode:
		return env.Rail(s.At, s.Rail)
	case SrcPortIn:
		return env.ReadPort(s.Port)
	}
	return Floating
}

// Exec executes the instruction ins located at home. It returns the gate
// output and the resolved sink (of kind SrcFloating if the output is not
// sent to a port).
//
func Exec(ins Instruction, home Locale, env Env) (Data, Source, error) {
	var (
		in   Data
		sink Source
	)
	op := ins.DataOp()
	switch i := ins.(type) {
	case Simple:
		in = i.Op.Input
	case Modded:
		rt := Resolve(i.Mod, home)
		in = Data{rt.read(env, op.LA), rt.read(env, op.LB)}
		sink = rt.Sink
	default:
		return Data{}, sink, errors.Errorf("unsupported instruction type %T", ins)
	}
	out, err := Eval(op.Code, in)
	if err != nil {
		return Data{}, Source{}, err
	}
	return out, sink, nil
}
