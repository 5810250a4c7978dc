// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assemble

// Run consumes the directives left to right, appending section descriptors
// to the returned list and applying trailing modifiers through the
// parameter window. ELF directives run the extractor in place, so derived
// sections keep their command-line position relative to explicit ones.
//
// Params is updated in place: an ELF directive may resolve the entry point
// and load base, and after the last directive an unset load base falls back
// to the first section that carries an explicit load address.
func Run(dirs []Directive, p *Params) ([]SectionSpec, error) {
	var (
		list []SectionSpec
		win  window
	)
	for _, d := range dirs {
		switch d.Op {
		case OpCode, OpData, OpManifest:
			kind := KindCode
			switch d.Op {
			case OpData:
				kind = KindData
			case OpManifest:
				kind = KindManifest
			}
			list = append(list, SectionSpec{Kind: kind, Path: d.Path})
			win.openAt(len(list) - 1)
		case OpELF:
			var err error
			list, err = extractELF(d.Path, list, p)
			if err != nil {
				return nil, err
			}
			win.openAt(len(list) - 1)
		case OpLoad:
			if !win.open {
				return nil, windowClosed(d.Option)
			}
			list[win.index].LoadAddr = d.Value
			list[win.index].HasLoadAddr = true
		case OpClass:
			if !win.open {
				return nil, windowClosed(d.Option)
			}
			list[win.index].Class = d.Value
		case OpID:
			if !win.open {
				return nil, windowClosed(d.Option)
			}
			list[win.index].ID = d.Value
		case OpScalar:
			win.close()
		default:
			return nil, &SequencingError{d.Option, "is not a recognized option"}
		}
	}

	if !p.LoadSet {
		for i := range list {
			if list[i].HasLoadAddr {
				p.LoadBase = uint64(list[i].LoadAddr)
				p.LoadSet = true
				break
			}
		}
	}
	return list, nil
}

func windowClosed(option string) *SequencingError {
	return &SequencingError{option, "must immediately follow a section-opening option"}
}
