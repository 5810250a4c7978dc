// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hexdump renders a TFTF package as an Intel HEX image laid out at
// the addresses the boot loader will copy the sections to.
package hexdump

import (
	"fmt"
	"io"

	"github.com/marcinbor85/gohex"

	"github.com/firmtools/tftftool/internal/tftf"
)

// Dump writes the loadable sections of im as Intel HEX records, each
// section placed at load base + copy offset.
func Dump(im *tftf.Image, w io.Writer) error {
	mem := gohex.NewMemory()
	mem.SetStartAddress(im.StartLocation)
	for i, s := range im.Sections {
		if s.Type == tftf.SectionSignature {
			break
		}
		if len(s.Data) == 0 {
			continue
		}
		if err := mem.AddBinary(im.LoadBase+s.CopyOffset, s.Data); err != nil {
			return fmt.Errorf("section [%d]: %w", i, err)
		}
	}
	return mem.DumpIntelHex(w, 16)
}
