// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package assemble turns an ordered sequence of command-line directives
// into a validated section list plus package parameters, ready to be handed
// to the tftf serializer. It implements the order-sensitive part of package
// creation: trailing --load/--class/--id modifiers attach to the most
// recently opened section and only to it.
package assemble

import "github.com/firmtools/tftftool/internal/tftf"

// DefaultBootStage is the boot stage assumed when --ara-stage is omitted.
const DefaultBootStage = 2

// Op tags a directive variant. The option parser produces Directives; the
// sequencer consumes them in command-line order with an exhaustive switch.
type Op int

const (
	OpCode     Op = iota // open a code section from a file
	OpData               // open a data section from a file
	OpManifest           // open a manifest section from a file
	OpELF                // extract code/data sections from an ELF file
	OpLoad               // set the load address of the open section
	OpClass              // set the class id of the open section
	OpID                 // set the section id of the open section
	OpScalar             // any other option; closes the parameter window
)

// Directive is one command-line directive in its parsed form. Path is set
// for section-opening directives, Value for modifiers, and Option always
// carries the option name for diagnostics.
type Directive struct {
	Op     Op
	Option string
	Path   string
	Value  uint32
}

// window tracks which section, if any, may still receive trailing
// modifiers. It opens on the descriptor a section-opening directive
// appended and closes permanently for that descriptor as soon as any other
// non-modifier directive is processed.
type window struct {
	open  bool
	index int
}

func (w *window) openAt(index int) { w.open, w.index = true, index }
func (w *window) close()           { w.open = false }

// SectionKind enumerates the content kinds a descriptor can hold.
type SectionKind int

const (
	KindCode SectionKind = iota
	KindData
	KindManifest
)

func (k SectionKind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindData:
		return "data"
	case KindManifest:
		return "manifest"
	}
	return "?"
}

// SectionSpec is one section descriptor accumulated by the sequencer.
// Exactly one of Path and Data is set: explicit sections reference their
// content file, ELF-derived sections carry the bytes directly.
type SectionSpec struct {
	Kind        SectionKind
	Path        string
	Data        []byte
	LoadAddr    uint32
	HasLoadAddr bool
	Class       uint32
	ID          uint32
}

// Params holds the scalar package parameters gathered from the command
// line. Numeric fields are kept at 64 bits so the validator can report
// out-of-range values instead of silently truncating them.
type Params struct {
	Name       string
	Start      uint64
	StartSet   bool // set explicitly or derived from an ELF entry point
	LoadBase   uint64
	LoadSet    bool
	HeaderSize uint64
	UniproMfg  uint64
	UniproPid  uint64
	AraVid     uint64
	AraPid     uint64
	AraStage   uint64
	Out        string
}

// NewParams returns Params with the format defaults applied: the minimum
// header size and boot stage 2.
func NewParams() Params {
	return Params{HeaderSize: tftf.HdrSizeDefault, AraStage: DefaultBootStage}
}
