// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package tritest provides utility functions for testing gates and circuits.
//
package tritest

import (
	"testing"

	"github.com/pkg/errors"

	ts "github.com/db47h/trisim"
)

var states = [...]ts.TriBool{ts.Floating, ts.Low, ts.High}

// Inputs returns all nine possible dual rail inputs.
//
func Inputs() []ts.Data {
	r := make([]ts.Data, 0, len(states)*len(states))
	for _, a := range states {
		for _, b := range states {
			r = append(r, ts.Data{A: a, B: b})
		}
	}
	return r
}

// A RefFn is a reference implementation of a gate. ok must be false for
// inputs that violate the gate's precondition.
//
type RefFn func(in ts.Data) (out ts.Data, ok bool)

// CompareOp checks ts.Eval(code, ·) against ref for all possible inputs.
// Inputs rejected by ref must be rejected by Eval with a
// *ts.PreconditionError.
//
func CompareOp(t *testing.T, code ts.DataCode, ref RefFn) {
	t.Helper()
	for _, in := range Inputs() {
		want, ok := ref(in)
		got, err := ts.Eval(code, in)
		if !ok {
			if err == nil {
				t.Errorf("%v%v = %v, expected precondition error", code, in, got)
				continue
			}
			if pe, isPE := errors.Cause(err).(*ts.PreconditionError); !isPE {
				t.Errorf("%v%v: expected *PreconditionError, got %v", code, in, err)
			} else if pe.Code != code || pe.In != in {
				t.Errorf("%v%v: precondition error reports %v%v", code, in, pe.Code, pe.In)
			}
			continue
		}
		if err != nil {
			t.Errorf("%v%v: unexpected error %v", code, in, err)
			continue
		}
		if got != want {
			t.Errorf("%v%v = %v, expected %v", code, in, got, want)
		}
	}
}

// Table is a truth table over driven inputs, indexed like
// a=0 && b=0, a=0 && b=1, a=1 && b=0, a=1 && b=1.
//
type Table [4]ts.Data

// CheckTable checks ts.Eval(code, ·) against table for all driven inputs.
//
func CheckTable(t *testing.T, code ts.DataCode, table Table) {
	t.Helper()
	for i, want := range table {
		in := ts.Data{A: ts.Bool(i&2 != 0), B: ts.Bool(i&1 != 0)}
		got, err := ts.Eval(code, in)
		if err != nil {
			t.Errorf("%v%v: unexpected error %v", code, in, err)
			continue
		}
		if got != want {
			t.Errorf("%v%v = %v, expected %v", code, in, got, want)
		}
	}
}

// D is a shorthand to build a driven Data.
//
func D(a, b bool) ts.Data {
	return ts.Data{A: ts.Bool(a), B: ts.Bool(b)}
}
