// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package trisim

import "strconv"

// ModCode is an addressing directive.
//
type ModCode uint8

// Addressing directives.
//
const (
	// LocaleLat sets the reference latitude to Mod.
	LocaleLat ModCode = iota
	// LocaleLatLon sets the reference location to (Mod, Lon).
	LocaleLatLon
	// JumperLat adds the signed offset Mod to the reference latitude.
	JumperLat
	// JumperLon adds the signed offset Mod to the reference longitude.
	JumperLon
	// ExternIn binds the first source to input port Mod.
	ExternIn
	// ExternOut drives output port Mod with rail A of the gate output.
	ExternOut
	modCount
)

var modNames = [...]string{
	LocaleLat:    "LocaleLat",
	LocaleLatLon: "LocaleLatLon",
	JumperLat:    "JumperLat",
	JumperLon:    "JumperLon",
	ExternIn:     "ExternIn",
	ExternOut:    "ExternOut",
}

func (c ModCode) String() string {
	if c < modCount {
		return modNames[c]
	}
	return "ModCode(" + strconv.Itoa(int(c)) + ")"
}

// A ModOp is an addressing directive together with its modifier.
//
type ModOp struct {
	Code ModCode
	// Latitude, signed offset or port index, depending on Code.
	Mod int
	// Longitude, LocaleLatLon only.
	Lon int
}

func (m ModOp) String() string {
	if m.Code == LocaleLatLon {
		return m.Code.String() + "(" + strconv.Itoa(m.Mod) + "," + strconv.Itoa(m.Lon) + ")"
	}
	return m.Code.String() + "(" + strconv.Itoa(m.Mod) + ")"
}

// IsPort returns true for the external port directives.
//
func (m ModOp) IsPort() bool {
	return m.Code == ExternIn || m.Code == ExternOut
}

// LocaleLatOp returns a LocaleLat directive.
func LocaleLatOp(lat int) ModOp { return ModOp{Code: LocaleLat, Mod: lat} }

// LocaleLatLonOp returns a LocaleLatLon directive.
func LocaleLatLonOp(lat, lon int) ModOp { return ModOp{Code: LocaleLatLon, Mod: lat, Lon: lon} }

// JumperLatOp returns a JumperLat directive.
func JumperLatOp(d int) ModOp { return ModOp{Code: JumperLat, Mod: d} }

// JumperLonOp returns a JumperLon directive.
func JumperLonOp(d int) ModOp { return ModOp{Code: JumperLon, Mod: d} }

// ExternInOp returns an ExternIn directive.
func ExternInOp(port int) ModOp { return ModOp{Code: ExternIn, Mod: port} }

// ExternOutOp returns an ExternOut directive.
func ExternOutOp(port int) ModOp { return ModOp{Code: ExternOut, Mod: port} }

// Locate returns the reference location obtained by applying m to cur.
// Port directives leave cur unchanged. No bounds checking is done.
//
func Locate(m ModOp, cur Locale) Locale {
	switch m.Code {
	case LocaleLat:
		cur.Lat = m.Mod
	case LocaleLatLon:
		cur = Locale{m.Mod, m.Lon}
	case JumperLat:
		cur.Lat += m.Mod
	case JumperLon:
		cur.Lon += m.Mod
	}
	return cur
}

// SourceKind tells where a resolved rail comes from or goes to.
//
type SourceKind uint8

// Source kinds.
//
const (
	SrcFloating SourceKind = iota // no source, reads floating
	SrcNode                       // a node rail, as last written in the opposite phase
	SrcPortIn                     // an external input port
	SrcPortOut                    // an external output port
)

// A Source is a resolved rail endpoint.
//
type Source struct {
	Kind SourceKind
	At   Locale
	Rail Rail
	Port int
}

func nodeSource(at Locale, r Rail) Source { return Source{Kind: SrcNode, At: at, Rail: r} }

func (s Source) String() string {
	switch s.Kind {
	case SrcNode:
		return s.At.String() + "." + s.Rail.String()
	case SrcPortIn:
		return "in:" + strconv.Itoa(s.Port)
	case SrcPortOut:
		return "out:" + strconv.Itoa(s.Port)
	}
	return "Z"
}

// A Route is the result of address resolution: a pair of sources for the
// lane selectors of a DataOp to pick from, and an optional sink.
//
type Route struct {
	Src  [2]Source
	Sink Source
}

// Resolve resolves the sources designated by m for a gate whose reference
// location is cur.
//
// Grid directives yield the two rails of the node at Locate(m, cur). ExternIn
// replaces the first source with the input port and keeps rail B of the node
// at cur as the second. ExternOut reads both rails of the node at cur and
// sinks rail A of the gate output to the output port.
//
func Resolve(m ModOp, cur Locale) Route {
	switch m.Code {
	case ExternIn:
		return Route{Src: [2]Source{
			{Kind: SrcPortIn, Port: m.Mod},
			nodeSource(cur, RailB),
		}}
	case ExternOut:
		return Route{
			Src:  [2]Source{nodeSource(cur, RailA), nodeSource(cur, RailB)},
			Sink: Source{Kind: SrcPortOut, Port: m.Mod},
		}
	}
	l := Locate(m, cur)
	return Route{Src: [2]Source{nodeSource(l, RailA), nodeSource(l, RailB)}}
}
