// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package trisim

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DataCode is a gate opcode.
//
type DataCode uint8

// Gate opcodes.
//
const (
	Nt   DataCode = iota // constant false
	And                  // a && b
	Nop                  // disconnect
	Ot                   // merge of two mutually exclusive rails
	Add                  // half adder: A = sum, B = carry
	In                   // fan-out of rail A
	Xor                  // a != b
	Or                   // a || b
	Nor                  // !(a || b)
	Nxor                 // a == b
	Out                  // pass gate, same as Pg
	Sub                  // half subtractor: A = difference, B = borrow
	Not                  // negation of the driven rail
	Pg                   // pass gate: B is the control rail, A the data rail
	Nand                 // !(a && b)
	Tt                   // constant true
	Dp                   // identity on both rails
	codeCount
)

var codeNames = [...]string{
	Nt:   "Nt",
	And:  "And",
	Nop:  "Nop",
	Ot:   "Ot",
	Add:  "Add",
	In:   "In",
	Xor:  "Xor",
	Or:   "Or",
	Nor:  "Nor",
	Nxor: "Nxor",
	Out:  "Out",
	Sub:  "Sub",
	Not:  "Not",
	Pg:   "Pg",
	Nand: "Nand",
	Tt:   "Tt",
	Dp:   "Dp",
}

func (c DataCode) String() string {
	if c < codeCount {
		return codeNames[c]
	}
	return "DataCode(" + strconv.Itoa(int(c)) + ")"
}

// Valid returns true if c is a known opcode.
//
func (c DataCode) Valid() bool { return c < codeCount }

// ParseDataCode returns the opcode with the given name (case insensitive).
//
func ParseDataCode(s string) (DataCode, error) {
	for i, n := range codeNames {
		if strings.EqualFold(n, s) {
			return DataCode(i), nil
		}
	}
	return 0, errors.New("unknown opcode " + s)
}

// PreconditionError is returned by Eval when the input rails do not satisfy
// the precondition of an opcode. It denotes a badly built circuit.
//
type PreconditionError struct {
	Code DataCode
	In   Data
	Rule string
}

func (e *PreconditionError) Error() string {
	return "precondition violated: " + e.Code.String() + e.In.String() + ": " + e.Rule
}

// preconditions
const (
	ruleOneRail  = "exactly one rail driven"
	ruleNoRail   = "both rails floating"
	ruleAnyRail  = "at least one rail driven"
	ruleRailA    = "rail A driven"
	ruleControlB = "control rail B driven"
)

func check(c DataCode, in Data) error {
	var ok bool
	var rule string
	switch c {
	case Nop, Dp:
		return nil
	case Ot, Not:
		ok, rule = in.A.Driven() != in.B.Driven(), ruleOneRail
	case Nt, Tt:
		ok, rule = !in.A.Driven() && !in.B.Driven(), ruleNoRail
	case And, Or, Nor, Xor, Nxor, Nand, Add, Sub:
		ok, rule = in.A.Driven() || in.B.Driven(), ruleAnyRail
	case In:
		ok, rule = in.A.Driven(), ruleRailA
	case Pg, Out:
		ok, rule = in.B.Driven(), ruleControlB
	default:
		return errors.New("invalid opcode " + c.String())
	}
	if !ok {
		return errors.WithStack(&PreconditionError{Code: c, In: in, Rule: rule})
	}
	return nil
}

func both(v bool) Data {
	t := Bool(v)
	return Data{t, t}
}

// Eval evaluates the gate c with the given input rails. It returns a
// *PreconditionError (with a stack trace, use errors.Cause to get to it) if in
// does not satisfy the precondition of c.
//
// For two-rail opcodes, a floating rail next to a driven one reads as false.
//
func Eval(c DataCode, in Data) (Data, error) {
	if err := check(c, in); err != nil {
		return Data{}, err
	}
	a, _ := in.A.Value()
	b, _ := in.B.Value()
	switch c {
	case Nt:
		return both(false), nil
	case Tt:
		return both(true), nil
	case Nop:
		return Data{}, nil
	case And:
		return both(a && b), nil
	case Or:
		return both(a || b), nil
	case Nor:
		return both(!(a || b)), nil
	case Xor:
		return both(a != b), nil
	case Nxor:
		return both(a == b), nil
	case Nand:
		return both(!(a && b)), nil
	case Add:
		return Data{Bool(a != b), Bool(a && b)}, nil
	case Sub:
		return Data{Bool(a != b), Bool(!(a || !b))}, nil
	case Ot:
		// exactly one of a, b is driven; the other reads false
		return both(a || b), nil
	case Not:
		return both(!(a || b)), nil
	case Pg, Out:
		if !b {
			return Data{}, nil
		}
		return Data{in.A, in.A}, nil
	case In:
		return both(a), nil
	case Dp:
		return in, nil
	}
	panic("unreachable")
}

// MustEval is like Eval but panics on error.
//
func MustEval(c DataCode, in Data) Data {
	d, err := Eval(c, in)
	if err != nil {
		panic(err)
	}
	return d
}
