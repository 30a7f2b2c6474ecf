// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package trisim

import (
	"github.com/pkg/errors"
)

// A Placement schedules an instruction at a grid location (its home, where
// its output is written) during one phase.
//
type Placement struct {
	At    Locale
	Phase Phase
	Ins   Instruction
}

// A Preset is an initial node value, visible to the phase opposite to Phase
// until overwritten.
//
type Preset struct {
	At    Locale
	Phase Phase
	Value Data
}

// A Program is the static description of a circuit: its instructions and the
// initial state of the grid.
//
// Programs are composed like chips: build small blocks and Append them,
// shifted to their final location.
//
//	var p trisim.Program
//	p.Place(trisim.Locale{0, 0}, trisim.Even, trisim.Simple{Op: trisim.Op(trisim.Tt)})
//	p.Place(trisim.Locale{0, 1}, trisim.Odd, trisim.Modded{
//		Mod: trisim.JumperLonOp(-1),
//		Op:  trisim.Op(trisim.In),
//	})
//
type Program struct {
	Placements []Placement
	Presets    []Preset
}

// Place appends an instruction to p.
//
func (p *Program) Place(at Locale, ph Phase, ins Instruction) {
	p.Placements = append(p.Placements, Placement{at, ph, ins})
}

// Preset sets the initial value of the node at the given location, as if
// written during phase ph.
//
func (p *Program) Preset(at Locale, ph Phase, v Data) {
	p.Presets = append(p.Presets, Preset{at, ph, v})
}

// Append appends the placements and presets of q to p.
//
func (p *Program) Append(q Program) {
	p.Placements = append(p.Placements, q.Placements...)
	p.Presets = append(p.Presets, q.Presets...)
}

// Shift returns a copy of p moved by d. Absolute directives (LocaleLat,
// LocaleLatLon) are moved along so that the block keeps its internal wiring.
//
func (p Program) Shift(d Locale) Program {
	q := Program{
		Placements: make([]Placement, len(p.Placements)),
		Presets:    make([]Preset, len(p.Presets)),
	}
	for i, pl := range p.Placements {
		pl.At = pl.At.Add(d)
		if m, ok := pl.Ins.(Modded); ok {
			switch m.Mod.Code {
			case LocaleLat:
				m.Mod.Mod += d.Lat
			case LocaleLatLon:
				m.Mod.Mod += d.Lat
				m.Mod.Lon += d.Lon
			}
			pl.Ins = m
		}
		q.Placements[i] = pl
	}
	for i, ps := range p.Presets {
		ps.At = ps.At.Add(d)
		q.Presets[i] = ps
	}
	return q
}

type slot struct {
	at Locale
	ph Phase
}

// check validates p against a grid of the given size. hasPorts tells if a
// port collaborator is available.
//
func (p *Program) check(size Locale, hasPorts bool) error {
	in := func(l Locale) bool {
		return l.Lat >= 0 && l.Lat < size.Lat && l.Lon >= 0 && l.Lon < size.Lon
	}
	writers := make(map[slot]int, len(p.Placements))
	for i, pl := range p.Placements {
		if pl.Ins == nil {
			return errors.Errorf("placement %d at %v: nil instruction", i, pl.At)
		}
		if !in(pl.At) {
			return errors.Errorf("placement %d: home %v out of bounds", i, pl.At)
		}
		if pl.Phase > Odd {
			return errors.Errorf("placement %d at %v: invalid phase %d", i, pl.At, pl.Phase)
		}
		s := slot{pl.At, pl.Phase}
		if j, ok := writers[s]; ok {
			return errors.Errorf("placements %d and %d both write %v during the %v phase", j, i, pl.At, pl.Phase)
		}
		writers[s] = i
		op := pl.Ins.DataOp()
		if !op.Code.Valid() {
			return errors.Errorf("placement %d at %v: invalid opcode %v", i, pl.At, op.Code)
		}
		m, ok := pl.Ins.(Modded)
		if !ok {
			continue
		}
		if !op.LA.Valid() || !op.LB.Valid() {
			return errors.Errorf("placement %d at %v: invalid lanes %v", i, pl.At, op)
		}
		switch {
		case m.Mod.Code >= modCount:
			return errors.Errorf("placement %d at %v: invalid directive %v", i, pl.At, m.Mod.Code)
		case m.Mod.IsPort():
			if !hasPorts {
				return errors.Errorf("placement %d at %v: %v with no port collaborator", i, pl.At, m.Mod)
			}
			if m.Mod.Mod < 0 || m.Mod.Mod > MaxPort {
				return errors.Errorf("placement %d at %v: port index out of range in %v", i, pl.At, m.Mod)
			}
		default:
			if t := Locate(m.Mod, pl.At); !in(t) {
				return errors.Errorf("placement %d at %v: %v targets %v, out of bounds", i, pl.At, m.Mod, t)
			}
		}
	}
	for i, ps := range p.Presets {
		if !in(ps.At) {
			return errors.Errorf("preset %d: %v out of bounds", i, ps.At)
		}
		if ps.Phase > Odd {
			return errors.Errorf("preset %d at %v: invalid phase %d", i, ps.At, ps.Phase)
		}
	}
	return nil
}
