// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/firmtools/tftftool/internal/assemble"
)

// The create command's options are order-sensitive: a --load, --class or
// --id attaches to the section opened by the directive immediately before
// it. pflag walks argv left to right and calls Value.Set once per
// occurrence, so every option is modeled as a custom Value that appends a
// directive to one shared list, preserving command-line order across
// different flags. Scalar options also record their value as a side effect;
// their directive only closes the parameter window.

// sectionValue handles --code, --data, --manifest and --elf.
type sectionValue struct {
	op   assemble.Op
	name string
	dirs *[]assemble.Directive
}

func (v *sectionValue) Set(s string) error {
	*v.dirs = append(*v.dirs, assemble.Directive{
		Op: v.op, Option: "--" + v.name, Path: s,
	})
	return nil
}

func (v *sectionValue) String() string { return "" }
func (v *sectionValue) Type() string   { return "file" }

// modifierValue handles --load, --class and --id.
type modifierValue struct {
	op   assemble.Op
	name string
	dirs *[]assemble.Directive
}

func (v *modifierValue) Set(s string) error {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return fmt.Errorf("invalid --%s value %q", v.name, s)
	}
	*v.dirs = append(*v.dirs, assemble.Directive{
		Op: v.op, Option: "--" + v.name, Value: uint32(n),
	})
	return nil
}

func (v *modifierValue) String() string { return "" }
func (v *modifierValue) Type() string   { return "num" }

// numValue handles numeric scalar options. The value is parsed at 64 bits
// so the validator can report out-of-range inputs with its own diagnostic.
type numValue struct {
	name string
	dst  *uint64
	set  *bool // optional "explicitly given" marker
	dirs *[]assemble.Directive
}

func (v *numValue) Set(s string) error {
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid --%s value %q", v.name, s)
	}
	*v.dst = n
	if v.set != nil {
		*v.set = true
	}
	*v.dirs = append(*v.dirs, assemble.Directive{
		Op: assemble.OpScalar, Option: "--" + v.name,
	})
	return nil
}

func (v *numValue) String() string { return "" }
func (v *numValue) Type() string   { return "num" }

// strValue handles string scalar options (--name, --out).
type strValue struct {
	name string
	dst  *string
	dirs *[]assemble.Directive
}

func (v *strValue) Set(s string) error {
	*v.dst = s
	*v.dirs = append(*v.dirs, assemble.Directive{
		Op: assemble.OpScalar, Option: "--" + v.name,
	})
	return nil
}

func (v *strValue) String() string { return "" }
func (v *strValue) Type() string   { return "string" }

// boolValue handles --verbose and --map, which take no argument but still
// close the parameter window like any other non-modifier option.
type boolValue struct {
	name string
	dst  *bool
	dirs *[]assemble.Directive
}

func (v *boolValue) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid --%s value %q", v.name, s)
	}
	*v.dst = b
	*v.dirs = append(*v.dirs, assemble.Directive{
		Op: assemble.OpScalar, Option: "--" + v.name,
	})
	return nil
}

func (v *boolValue) String() string { return "false" }
func (v *boolValue) Type() string   { return "bool" }

func addBoolFlag(fs *pflag.FlagSet, v *boolValue, shorthand, usage string) {
	f := fs.VarPF(v, v.name, shorthand, usage)
	f.NoOptDefVal = "true"
}
