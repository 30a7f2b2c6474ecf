// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package trisim

import (
	"runtime"
	"sync"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

// a component is a placed instruction, ready to run.
type component struct {
	home Locale
	idx  int // index of home in a frame
	ins  Instruction
}

// Circuit is a runnable circuit simulation.
//
type Circuit struct {
	size   Locale
	frames [2][]Data // node states, indexed by the phase that wrote them
	ports  Ports
	cs     [2][]component
	phase  Phase // phase evaluated by the next Step
	tick   uint
	err    error
	log    log15.Logger

	wc   []chan Phase
	errs []error // one per worker
	wg   sync.WaitGroup
}

// NewCircuit builds a new circuit of the given size running prog.
//
// workers is the number of goroutines used to update the state of the Circuit
// each step of the simulation. If less or equal to 0, the value of GOMAXPROCS
// will be used.
//
// ports may be nil if prog has no port directives.
//
// NewCircuit returns an error if prog is not valid for the grid: homes, presets
// or addressing targets out of bounds, more than one instruction writing the
// same node during the same phase, invalid lane selectors or port indices.
//
// Callers must make sure to call Dispose() once the circuit is no longer needed
// in order to release allocated resources.
//
func NewCircuit(workers int, size Locale, ports Ports, prog Program) (*Circuit, error) {
	if size.Lat <= 0 || size.Lon <= 0 {
		return nil, errors.Errorf("invalid grid size %v", size)
	}
	if len(prog.Placements) == 0 {
		return nil, errors.New("empty program")
	}
	if err := prog.check(size, ports != nil); err != nil {
		return nil, errors.Wrap(err, "invalid program")
	}

	n := size.Lat * size.Lon
	c := &Circuit{
		size:  size,
		ports: ports,
		log:   discard(),
	}
	c.frames[Even] = make([]Data, n)
	c.frames[Odd] = make([]Data, n)
	for _, ps := range prog.Presets {
		c.frames[ps.Phase][c.index(ps.At)] = ps.Value
	}
	for _, pl := range prog.Placements {
		c.cs[pl.Phase] = append(c.cs[pl.Phase], component{pl.At, c.index(pl.At), pl.Ins})
	}

	// workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	if workers == 0 {
		workers = 1
	}
	even, odd := c.cs[Even], c.cs[Odd]
	for len(even) > 0 || len(odd) > 0 {
		var cs [2][]component
		cs[Even], even = split(even, workers-len(c.wc))
		cs[Odd], odd = split(odd, workers-len(c.wc))
		wc := make(chan Phase, 1)
		c.wc = append(c.wc, wc)
		c.errs = append(c.errs, nil)
		go c.worker(len(c.wc)-1, cs, wc)
	}

	return c, nil
}

// split takes the first of n equal shares of cs.
//
func split(cs []component, n int) (share, rest []component) {
	if n <= 1 {
		return cs, nil
	}
	size := len(cs) / n
	if size*n < len(cs) {
		size++
	}
	return cs[:size], cs[size:]
}

func discard() log15.Logger {
	l := log15.New("pkg", "trisim")
	l.SetHandler(log15.DiscardHandler())
	return l
}

// SetLogger sets the logger used to report steps and failures. By default,
// nothing is logged.
//
func (c *Circuit) SetLogger(l log15.Logger) {
	if l == nil {
		l = discard()
	}
	c.log = l
}

// ErrDisposed is returned by Step once the circuit has been disposed of.
//
var ErrDisposed = errors.New("circuit disposed")

// Dispose releases all resources allocated for a circuit and stops
// worker goroutines. Subsequent calls to Step return ErrDisposed.
//
func (c *Circuit) Dispose() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		close(wc)
	}
	c.wg.Wait()
	c.wc = nil
	c.err = ErrDisposed
}

func (c *Circuit) worker(id int, cs [2][]component, wc <-chan Phase) {
	for {
		ph, ok := <-wc
		if !ok {
			c.wg.Done()
			return
		}
		c.errs[id] = c.run(ph, cs[ph])
		c.wg.Done()
	}
}

// run executes the components of phase ph. Components write to distinct
// nodes of frame ph and only read frame ph.Opposite().
//
func (c *Circuit) run(ph Phase, cs []component) error {
	env := view{c, ph}
	out := c.frames[ph]
	for _, p := range cs {
		d, sink, err := Exec(p.ins, p.home, env)
		if err != nil {
			return errors.Wrapf(err, "%v at %v, %v phase", p.ins.DataOp(), p.home, ph)
		}
		out[p.idx] = d
		if sink.Kind == SrcPortOut {
			c.ports.WritePort(sink.Port, d.A)
		}
	}
	return nil
}

// view is the Env of instructions running during phase ph.
//
type view struct {
	c  *Circuit
	ph Phase
}

func (v view) Rail(at Locale, r Rail) TriBool {
	return v.c.frames[v.ph.Opposite()][v.c.index(at)].Rail(r)
}

func (v view) ReadPort(p int) TriBool {
	return v.c.ports.ReadPort(p)
}

func (c *Circuit) index(at Locale) int {
	return at.Lat*c.size.Lon + at.Lon
}

func (c *Circuit) inGrid(at Locale) bool {
	return at.Lat >= 0 && at.Lat < c.size.Lat && at.Lon >= 0 && at.Lon < c.size.Lon
}

// Step evaluates all instructions scheduled for the current phase, waits for
// all of them to complete then flips the phase.
//
// If an instruction fails, Step returns its error and the phase is not
// flipped. The circuit is then considered broken and further calls to Step
// return the same error.
//
func (c *Circuit) Step() error {
	if c.err != nil {
		return c.err
	}
	ph := c.phase
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		wc <- ph
	}
	c.wg.Wait()

	for _, err := range c.errs {
		if err != nil {
			c.err = err
			c.log.Error("step failed", "step", c.tick, "phase", ph, "err", err)
			return err
		}
	}
	c.log.Debug("step", "step", c.tick, "phase", ph, "gates", len(c.cs[ph]))
	c.tick++
	c.phase = ph.Opposite()
	return nil
}

// Cycle runs the simulation until it is back to the current phase (two
// steps).
//
func (c *Circuit) Cycle() error {
	if err := c.Step(); err != nil {
		return err
	}
	return c.Step()
}

// Run runs n cycles.
//
func (c *Circuit) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := c.Cycle(); err != nil {
			return err
		}
	}
	return nil
}

// Err returns the error that broke the circuit, if any.
//
func (c *Circuit) Err() error { return c.err }

// Phase returns the phase that will be evaluated by the next call to Step.
//
func (c *Circuit) Phase() Phase { return c.phase }

// Steps returns the value of the step counter.
//
func (c *Circuit) Steps() uint { return c.tick }

// Size returns the instruction count in the circuit.
//
func (c *Circuit) Size() int { return len(c.cs[Even]) + len(c.cs[Odd]) }

// Grid returns the size of the node grid.
//
func (c *Circuit) Grid() Locale { return c.size }

// Get returns the rails last written at the given location during phase ph.
// Locations that have not been written yet, or outside of the grid, read
// floating.
//
func (c *Circuit) Get(at Locale, ph Phase) Data {
	if !c.inGrid(at) || ph > Odd {
		return Data{}
	}
	return c.frames[ph][c.index(at)]
}

// Node returns the node at the given location, as it will be seen by the
// instructions of the next step.
//
func (c *Circuit) Node(at Locale) Node {
	ph := c.phase.Opposite()
	d := c.Get(at, ph)
	return Node{PhasedValue{d.A, ph}, PhasedValue{d.B, ph}}
}
