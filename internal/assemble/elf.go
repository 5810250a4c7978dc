// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assemble

import (
	"debug/elf"
	"math"
	"os"
)

// ELF section names the extractor looks for.
const (
	elfCodeSection = ".text"
	elfDataSection = ".data"
)

// extractELF derives up to two section descriptors from an ELF object file
// and appends them to list, code first. The descriptors carry the sections'
// raw bytes and virtual addresses. If the entry point or load base has not
// been set yet, it is taken from the ELF entry address and the code
// section's address respectively.
func extractELF(path string, list []SectionSpec, p *Params) ([]SectionSpec, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, &ExtractionError{path, "unable to open", err}
	}
	defer r.Close()
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, &ExtractionError{path, "malformed ELF", err}
	}
	defer f.Close()

	text := f.Section(elfCodeSection)
	data := f.Section(elfDataSection)
	if text == nil && data == nil {
		return nil, &ExtractionError{path, "no usable sections in ELF file", nil}
	}
	if text != nil {
		spec, err := elfSection(path, text, KindCode)
		if err != nil {
			return nil, err
		}
		list = append(list, spec)
		if !p.LoadSet {
			p.LoadBase = text.Addr
			p.LoadSet = true
		}
	}
	if data != nil {
		spec, err := elfSection(path, data, KindData)
		if err != nil {
			return nil, err
		}
		list = append(list, spec)
	}
	if !p.StartSet {
		p.Start = f.Entry
		p.StartSet = true
	}
	return list, nil
}

func elfSection(path string, s *elf.Section, kind SectionKind) (SectionSpec, error) {
	if s.Addr > math.MaxUint32 {
		return SectionSpec{}, &ExtractionError{
			path, "section address does not fit in 32 bits", nil,
		}
	}
	data, err := s.Data()
	if err != nil {
		return SectionSpec{}, &ExtractionError{path, "malformed ELF", err}
	}
	return SectionSpec{
		Kind:        kind,
		Data:        data,
		LoadAddr:    uint32(s.Addr),
		HasLoadAddr: true,
	}, nil
}
