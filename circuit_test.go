package trisim_test

import (
	"strings"
	"testing"

	"github.com/pkg/errors"

	ts "github.com/db47h/trisim"
	"github.com/db47h/trisim/trilib"
	"github.com/db47h/trisim/tritest"
)

func newCircuit(t *testing.T, workers int, size ts.Locale, ports ts.Ports, prog ts.Program) *ts.Circuit {
	t.Helper()
	c, err := ts.NewCircuit(workers, size, ports, prog)
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	return c
}

func Test_half_adder(t *testing.T) {
	td := []struct {
		a, b       bool
		sum, carry bool
	}{
		{false, false, false, false},
		{true, false, true, false},
		{false, true, true, false},
		{true, true, false, true},
	}
	for _, d := range td {
		var p ts.Program
		p.Place(ts.Locale{}, ts.Even, ts.Simple{Op: ts.Op(ts.Add).With(tritest.D(d.a, d.b))})
		c := newCircuit(t, 0, ts.Locale{Lat: 1, Lon: 1}, nil, p)
		if err := c.Step(); err != nil {
			t.Fatal(err)
		}
		if got, want := c.Get(ts.Locale{}, ts.Even), tritest.D(d.sum, d.carry); got != want {
			t.Errorf("Add(%v, %v) = %v, expected %v", d.a, d.b, got, want)
		}
		if n := c.Node(ts.Locale{}); n.IA.Phase != ts.Even || !n.IA.ValidIn(ts.Odd) || n.IA.ValidIn(ts.Even) {
			t.Errorf("bad node phase tags %v", n)
		}
		c.Dispose()
	}
}

// Phase alternation: a value written during the Even phase is seen by the
// next Odd step and never by Even readers.
//
func Test_phase_alternation(t *testing.T) {
	var (
		src  = ts.Locale{Lat: 0, Lon: 0}
		odd  = ts.Locale{Lat: 0, Lon: 1}
		even = ts.Locale{Lat: 0, Lon: 2}
		p    ts.Program
	)
	p.Place(src, ts.Even, ts.Simple{Op: ts.Op(ts.Tt)})
	p.Place(odd, ts.Odd, ts.Modded{Mod: ts.LocaleLatLonOp(0, 0), Op: ts.Op(ts.Dp)})
	p.Place(even, ts.Even, ts.Modded{Mod: ts.JumperLonOp(-2), Op: ts.Op(ts.Dp)})
	c := newCircuit(t, 2, ts.Locale{Lat: 1, Lon: 3}, nil, p)
	defer c.Dispose()

	tt := tritest.D(true, true)
	if c.Phase() != ts.Even {
		t.Fatalf("initial phase %v", c.Phase())
	}
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if got := c.Get(src, ts.Even); got != tt {
		t.Fatalf("src = %v", got)
	}
	// the Odd reader has not run yet
	if got := c.Get(odd, ts.Odd); got != (ts.Data{}) {
		t.Fatalf("odd reader saw %v before its step", got)
	}
	for i := 0; i < 4; i++ {
		if err := c.Step(); err != nil {
			t.Fatal(err)
		}
		if got := c.Get(odd, ts.Odd); got != tt {
			t.Errorf("step %d: odd reader = %v, expected %v", c.Steps(), got, tt)
		}
		if got := c.Get(even, ts.Even); got != (ts.Data{}) {
			t.Errorf("step %d: even reader saw same phase value %v", c.Steps(), got)
		}
	}
	if c.Steps() != 5 || c.Phase() != ts.Odd {
		t.Errorf("steps = %d, phase = %v", c.Steps(), c.Phase())
	}
}

func Test_values_persist(t *testing.T) {
	var p ts.Program
	p.Place(ts.Locale{Lat: 1}, ts.Odd, ts.Modded{Mod: ts.JumperLatOp(-1), Op: ts.Op(ts.Not)})
	p.Preset(ts.Locale{}, ts.Even, ts.Data{A: ts.High})
	c := newCircuit(t, 0, ts.Locale{Lat: 2, Lon: 1}, nil, p)
	defer c.Dispose()
	if err := c.Run(3); err != nil {
		t.Fatal(err)
	}
	if got := c.Get(ts.Locale{Lat: 1}, ts.Odd); got != tritest.D(false, false) {
		t.Errorf("got %v", got)
	}
	if got := c.Get(ts.Locale{}, ts.Even); got != (ts.Data{A: ts.High}) {
		t.Errorf("preset overwritten: %v", got)
	}
}

func Test_ports(t *testing.T) {
	// invert input port 0 onto output port 1.
	var p ts.Program
	p.Place(ts.Locale{}, ts.Even, ts.Modded{Mod: ts.ExternInOp(0), Op: ts.Op(ts.Not).Lanes(ts.LaneA, ts.LaneOff)})
	p.Place(ts.Locale{}, ts.Odd, ts.Modded{Mod: ts.ExternOutOp(1), Op: ts.Op(ts.Dp)})
	bank := ts.NewBank(2)
	c := newCircuit(t, 0, ts.Locale{Lat: 1, Lon: 1}, bank, p)
	defer c.Dispose()

	for _, v := range []bool{true, false, true} {
		bank.SetIn(0, ts.Bool(v))
		if err := c.Cycle(); err != nil {
			t.Fatal(err)
		}
		if got := bank.Out(1); got != ts.Bool(!v) {
			t.Errorf("in = %v, out = %v", v, got)
		}
	}
	if bank.In(0) != ts.High || bank.Out(7) != ts.Floating || bank.ReadPort(-1) != ts.Floating {
		t.Error("bad bank state")
	}
}

func Test_precondition_failure(t *testing.T) {
	var p ts.Program
	p.Place(ts.Locale{}, ts.Even, ts.Simple{Op: ts.Op(ts.Tt)})
	// And on a node that is never written during the Even phase.
	p.Place(ts.Locale{Lon: 1}, ts.Odd, ts.Modded{Mod: ts.JumperLatOp(1), Op: ts.Op(ts.And)})
	c := newCircuit(t, 0, ts.Locale{Lat: 2, Lon: 2}, nil, p)
	defer c.Dispose()

	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	err := c.Step()
	if err == nil {
		t.Fatal("expected error")
	}
	pe, ok := errors.Cause(err).(*ts.PreconditionError)
	if !ok {
		t.Fatalf("expected *PreconditionError, got %v", err)
	}
	if pe.Code != ts.And || pe.In != (ts.Data{}) {
		t.Errorf("bad error %v", pe)
	}
	if !strings.Contains(err.Error(), "[0,1]") {
		t.Errorf("error does not report the gate location: %v", err)
	}
	if c.Phase() != ts.Odd || c.Steps() != 1 {
		t.Errorf("phase = %v, steps = %d", c.Phase(), c.Steps())
	}
	if err2 := c.Step(); err2 != err || c.Err() != err {
		t.Errorf("circuit not stuck: %v", err2)
	}
}

func Test_workers(t *testing.T) {
	// a row of inverters: each node of row 1 inverts the node above it.
	const n = 64
	var p ts.Program
	for i := 0; i < n; i++ {
		p.Place(ts.Locale{Lon: i}, ts.Even, trilib.Const(i%2 == 0))
		p.Place(ts.Locale{Lat: 1, Lon: i}, ts.Odd, ts.Modded{
			Mod: ts.JumperLatOp(-1),
			Op:  ts.Op(ts.Nand),
		})
	}
	for _, w := range []int{1, 3, 8, 200} {
		c := newCircuit(t, w, ts.Locale{Lat: 2, Lon: n}, nil, p)
		if c.Size() != 2*n {
			t.Errorf("size = %d", c.Size())
		}
		if err := c.Cycle(); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < n; i++ {
			want := tritest.D(i%2 != 0, i%2 != 0)
			if got := c.Get(ts.Locale{Lat: 1, Lon: i}, ts.Odd); got != want {
				t.Errorf("workers = %d, node %d = %v, expected %v", w, i, got, want)
			}
		}
		c.Dispose()
	}
}

func Test_get_outside_grid(t *testing.T) {
	var p ts.Program
	p.Place(ts.Locale{Lon: 1}, ts.Even, ts.Simple{Op: ts.Op(ts.Tt)})
	c := newCircuit(t, 0, ts.Locale{Lat: 2, Lon: 2}, nil, p)
	defer c.Dispose()
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if got := c.Get(ts.Locale{Lon: 1}, ts.Even); got != tritest.D(true, true) {
		t.Fatalf("got %v", got)
	}
	// [1,-1] would alias [0,1] in the frame.
	for _, at := range []ts.Locale{{Lat: 1, Lon: -1}, {Lat: 0, Lon: 2}, {Lat: 2}, {Lat: -1, Lon: 1}, {Lat: 100, Lon: 100}} {
		if got := c.Get(at, ts.Even); got != (ts.Data{}) {
			t.Errorf("Get(%v) = %v, expected floating", at, got)
		}
		if n := c.Node(at); n.Data() != (ts.Data{}) {
			t.Errorf("Node(%v) = %v, expected floating", at, n)
		}
	}
}

func Test_dispose(t *testing.T) {
	var p ts.Program
	p.Place(ts.Locale{}, ts.Even, ts.Simple{Op: ts.Op(ts.Tt)})
	c := newCircuit(t, 0, ts.Locale{Lat: 1, Lon: 1}, nil, p)
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	c.Dispose()
	if err := c.Step(); err != ts.ErrDisposed {
		t.Errorf("Step after Dispose returned %v", err)
	}
	if err := c.Cycle(); err != ts.ErrDisposed {
		t.Errorf("Cycle after Dispose returned %v", err)
	}
	if c.Steps() != 1 || c.Phase() != ts.Odd || c.Err() != ts.ErrDisposed {
		t.Errorf("steps = %d, phase = %v, err = %v", c.Steps(), c.Phase(), c.Err())
	}
	// a second Dispose is harmless
	c.Dispose()
}

func TestNewCircuit_errors(t *testing.T) {
	size := ts.Locale{Lat: 2, Lon: 2}
	tt := ts.Simple{Op: ts.Op(ts.Tt)}
	td := []struct {
		name  string
		size  ts.Locale
		ports ts.Ports
		place []ts.Placement
		pre   []ts.Preset
	}{
		{"size", ts.Locale{Lat: 0, Lon: 2}, nil, []ts.Placement{{Ins: tt}}, nil},
		{"empty", size, nil, nil, nil},
		{"home", size, nil, []ts.Placement{{At: ts.Locale{Lat: 2}, Ins: tt}}, nil},
		{"nil", size, nil, []ts.Placement{{}}, nil},
		{"writers", size, nil, []ts.Placement{{Ins: tt}, {Ins: tt}}, nil},
		{"target", size, nil, []ts.Placement{{Ins: ts.Modded{Mod: ts.JumperLonOp(-1), Op: ts.Op(ts.Dp)}}}, nil},
		{"lanes", size, nil, []ts.Placement{{Ins: ts.Modded{Mod: ts.JumperLonOp(1), Op: ts.Op(ts.Dp).Lanes(2, ts.LaneA)}}}, nil},
		{"no ports", size, nil, []ts.Placement{{Ins: ts.Modded{Mod: ts.ExternInOp(0), Op: ts.Op(ts.In)}}}, nil},
		{"port", size, ts.NewBank(1), []ts.Placement{{Ins: ts.Modded{Mod: ts.ExternOutOp(256), Op: ts.Op(ts.Dp)}}}, nil},
		{"opcode", size, nil, []ts.Placement{{Ins: ts.Simple{Op: ts.Op(ts.DataCode(99))}}}, nil},
		{"directive", size, nil, []ts.Placement{{Ins: ts.Modded{Mod: ts.ModOp{Code: 42}, Op: ts.Op(ts.Dp)}}}, nil},
		{"preset", size, nil, []ts.Placement{{Ins: tt}}, []ts.Preset{{At: ts.Locale{Lon: -1}}}},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			c, err := ts.NewCircuit(0, d.size, d.ports, ts.Program{Placements: d.place, Presets: d.pre})
			if err == nil {
				c.Dispose()
				t.Fatal("expected error")
			}
		})
	}
	// same node, different phases is fine
	c, err := ts.NewCircuit(0, size, nil, ts.Program{Placements: []ts.Placement{
		{Phase: ts.Even, Ins: tt},
		{Phase: ts.Odd, Ins: tt},
	}})
	if err != nil {
		t.Fatal(err)
	}
	c.Dispose()
}

func TestProgram_Shift(t *testing.T) {
	var p ts.Program
	p.Place(ts.Locale{}, ts.Even, ts.Simple{Op: ts.Op(ts.Tt)})
	p.Place(ts.Locale{Lon: 1}, ts.Odd, ts.Modded{Mod: ts.LocaleLatLonOp(0, 0), Op: ts.Op(ts.In)})
	p.Place(ts.Locale{Lat: 1}, ts.Odd, ts.Modded{Mod: ts.LocaleLatOp(0), Op: ts.Op(ts.In)})
	p.Place(ts.Locale{Lat: 1, Lon: 1}, ts.Odd, ts.Modded{Mod: ts.JumperLatOp(-1), Op: ts.Op(ts.Dp)})
	p.Preset(ts.Locale{}, ts.Even, tritest.D(false, false))

	q := p.Shift(ts.Locale{Lat: 2, Lon: 3})
	if m := q.Placements[1].Ins.(ts.Modded).Mod; m != ts.LocaleLatLonOp(2, 3) {
		t.Errorf("LocaleLatLon not shifted: %v", m)
	}
	if m := q.Placements[2].Ins.(ts.Modded).Mod; m != ts.LocaleLatOp(2) {
		t.Errorf("LocaleLat not shifted: %v", m)
	}
	if m := q.Placements[3].Ins.(ts.Modded).Mod; m != ts.JumperLatOp(-1) {
		t.Errorf("jumper shifted: %v", m)
	}
	if q.Presets[0].At != (ts.Locale{Lat: 2, Lon: 3}) || p.Presets[0].At != (ts.Locale{}) {
		t.Errorf("bad preset shift")
	}

	var all ts.Program
	all.Append(p)
	all.Append(q)
	c := newCircuit(t, 0, ts.Locale{Lat: 4, Lon: 5}, nil, all)
	defer c.Dispose()
	if err := c.Cycle(); err != nil {
		t.Fatal(err)
	}
	for _, at := range []ts.Locale{{Lat: 2, Lon: 4}, {Lat: 3, Lon: 3}, {Lat: 0, Lon: 1}} {
		if got := c.Get(at, ts.Odd); got != tritest.D(true, true) {
			t.Errorf("%v = %v", at, got)
		}
	}
}
