// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assemble

import (
	"fmt"
	"math"

	"github.com/firmtools/tftftool/internal/tftf"
)

// Validate checks the assembled section list and package parameters against
// the format constraints, in a fixed order, and stops at the first
// violation. On success it also fills in the default output path when none
// was given.
func Validate(list []SectionSpec, p *Params) error {
	if len(list) == 0 {
		return &ValidationError{CheckSectionsPresent,
			"missing input section (--code, --data, --manifest or --elf)"}
	}
	if p.HeaderSize < tftf.HdrSizeMin || p.HeaderSize > tftf.HdrSizeMax {
		return &ValidationError{CheckHeaderSize, fmt.Sprintf(
			"header size %d out of range [%d, %d]",
			p.HeaderSize, tftf.HdrSizeMin, tftf.HdrSizeMax)}
	}
	if p.HeaderSize%4 != 0 {
		return &ValidationError{CheckHeaderSize, fmt.Sprintf(
			"header size %d is not a multiple of 4", p.HeaderSize)}
	}
	if len(list) > tftf.MaxSections {
		return &ValidationError{CheckSectionCount, fmt.Sprintf(
			"too many sections (%d, at most %d)", len(list), tftf.MaxSections)}
	}
	ranges := []struct {
		name string
		val  uint64
	}{
		{"--start", p.Start},
		{"--unipro-mfg", p.UniproMfg},
		{"--unipro-pid", p.UniproPid},
		{"--ara-vid", p.AraVid},
		{"--ara-pid", p.AraPid},
	}
	for _, r := range ranges {
		if r.val > math.MaxUint32 {
			return &ValidationError{CheckNumericRange, fmt.Sprintf(
				"%s value %#x does not fit in 32 bits", r.name, r.val)}
		}
	}
	if p.AraStage < 1 || p.AraStage > 3 {
		return &ValidationError{CheckBootStage, fmt.Sprintf(
			"--ara-stage must be 1, 2 or 3, got %d", p.AraStage)}
	}
	if !p.StartSet {
		return &ValidationError{CheckAddresses,
			"no entry point: pass --start or supply an ELF file"}
	}
	if !p.LoadSet {
		return &ValidationError{CheckAddresses,
			"no load address: pass --load after a section or supply an ELF file"}
	}
	if p.Out == "" {
		p.Out = DefaultOutputName(p)
	}
	return nil
}

// DefaultOutputName derives the output file name from the identifier fields
// and the boot stage. The mapping is deterministic so that build scripts
// can predict the artifact name.
func DefaultOutputName(p *Params) string {
	return fmt.Sprintf("ara_%08x_%08x_%08x_%08x_%02x%s",
		p.UniproMfg, p.UniproPid, p.AraVid, p.AraPid, p.AraStage,
		tftf.FileExtension)
}
