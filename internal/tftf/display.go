// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tftf

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Display prints a human-readable synopsis of the header and the section
// table.
func (im *Image) Display(w io.Writer, title string) {
	if title != "" {
		fmt.Fprintf(w, "TFTF header for %s:\n", title)
	} else {
		fmt.Fprintf(w, "TFTF header:\n")
	}
	fmt.Fprintf(w, "  Sentinel:          '%s'\n", Sentinel)
	fmt.Fprintf(w, "  Header size:       0x%08x\n", im.HeaderSize)
	fmt.Fprintf(w, "  Timestamp:         '%s'\n", im.Timestamp)
	fmt.Fprintf(w, "  Fw. pkg name:      '%s'\n", im.Name)
	fmt.Fprintf(w, "  Load length:       0x%08x\n", im.LoadLength)
	fmt.Fprintf(w, "  Load base:         0x%08x\n", im.LoadBase)
	fmt.Fprintf(w, "  Expanded length:   0x%08x\n", im.ExpandedLen)
	fmt.Fprintf(w, "  Start location:    0x%08x\n", im.StartLocation)
	fmt.Fprintf(w, "  Unipro mfg ID:     0x%08x\n", im.UniproMfg)
	fmt.Fprintf(w, "  Unipro product ID: 0x%08x\n", im.UniproPid)
	fmt.Fprintf(w, "  Ara vendor ID:     0x%08x\n", im.AraVid)
	fmt.Fprintf(w, "  Ara product ID:    0x%08x\n", im.AraPid)
	fmt.Fprintf(w, "  Ara boot stage:    %d\n", im.AraStage)
	fmt.Fprintf(w, "  Section table:\n")
	fmt.Fprintf(w, "       Length     Exp. Len   Offset     Class      ID         Type\n")
	for i, s := range im.Sections {
		fmt.Fprintf(w, "    %2d 0x%08x 0x%08x 0x%08x 0x%08x 0x%08x %s\n",
			i, s.Length, s.ExpandedLength, s.CopyOffset, s.Class, s.ID,
			s.Type)
	}
	if unused := MaxSections - len(im.Sections); unused > 0 {
		fmt.Fprintf(w, "    %2d (unused)\n", len(im.Sections))
		if unused > 2 {
			fmt.Fprintf(w, "     :    :\n")
		}
		if unused > 1 {
			fmt.Fprintf(w, "    %2d (unused)\n", MaxSections-1)
		}
	}
}

// DisplayData prints each section payload as a hex dump, abbreviating long
// sections to their first and last lines.
func (im *Image) DisplayData(w io.Writer) {
	const perLine = 32
	for i, s := range im.Sections {
		fmt.Fprintf(w, "  section [%d] (%d bytes): %s\n", i, s.Length, s.Type)
		blob := s.Data
		if len(blob) <= 3*perLine {
			for off := 0; off < len(blob); off += perLine {
				end := min(off+perLine, len(blob))
				fmt.Fprintf(w, "    %s\n", hex.EncodeToString(blob[off:end]))
			}
			continue
		}
		fmt.Fprintf(w, "    %s\n", hex.EncodeToString(blob[:perLine]))
		fmt.Fprintf(w, "      :\n")
		fmt.Fprintf(w, "    %s\n", hex.EncodeToString(blob[len(blob)-perLine:]))
	}
}

// WriteMapFile writes a map of header field offsets to path. Each line is
// "name offset" with the offset relative to base, in the convention used by
// the boot ROM build scripts.
func (im *Image) WriteMapFile(path string, base uint32) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", path, err)
	}
	if err := im.writeMap(w, base); err != nil {
		w.Close()
		os.Remove(path)
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return nil
}

func (im *Image) writeMap(w io.Writer, base uint32) error {
	fields := []struct {
		name string
		off  uint32
	}{
		{"sentinel", 0x00},
		{"header_size", 0x04},
		{"timestamp", 0x08},
		{"name", 0x18},
		{"load_length", 0x48},
		{"load_base", 0x4c},
		{"expanded_length", 0x50},
		{"start_location", 0x54},
		{"unipro_mfg", 0x58},
		{"unipro_pid", 0x5c},
		{"ara_vid", 0x60},
		{"ara_pid", 0x64},
		{"ara_stage", 0x68},
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "tftf.%s  %08x\n", f.name, base+f.off); err != nil {
			return err
		}
	}
	secFields := []string{
		"section_length", "expanded_length", "copy_offset",
		"section_type", "section_class", "section_id",
	}
	for i := range im.Sections {
		off := base + fixedHdrLength + uint32(i)*sectionDescLength
		for j, name := range secFields {
			_, err := fmt.Fprintf(w, "tftf.sections[%d].%s  %08x\n",
				i, name, off+uint32(j)*4)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
