// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tftf assembles, writes and parses TFTF firmware packages: a
// fixed-size binary header describing up to MaxSections content sections,
// followed by the section payloads in table order.
package tftf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	Sentinel        = "TFTF"
	TimestampLength = 16
	NameLength      = 48

	// Header size bounds. The fixed part plus the full descriptor table
	// occupies fixedHdrLength+MaxSections*sectionDescLength bytes; anything
	// beyond that, up to the configured header size, is zero padding.
	HdrSizeMin     = 512
	HdrSizeMax     = 16384
	HdrSizeDefault = 512

	MaxSections = 16

	// FileExtension is appended to output names that lack an extension and
	// tried when opening a package by a bare name.
	FileExtension = ".bin"

	fixedHdrLength    = 108
	sectionDescLength = 24
)

// ErrSectionTableFull is returned by AddSection when the descriptor table
// has no free slot.
var ErrSectionTableFull = errors.New("section table full")

// Image is an in-memory TFTF package: the header scalars plus the ordered
// section table. Zero scalar fields are valid defaults everywhere except
// HeaderSize, so images should be created with NewImage.
type Image struct {
	HeaderSize    uint32
	Timestamp     string // ASCII "YYYYMMDD HHMMSS", UTC
	Name          string
	LoadLength    uint32
	LoadBase      uint32
	ExpandedLen   uint32
	StartLocation uint32
	UniproMfg     uint32
	UniproPid     uint32
	AraVid        uint32
	AraPid        uint32
	AraStage      uint32

	Sections []*Section
}

// NewImage returns an empty image with the given header size. The header
// size is trusted here; callers validate it beforehand.
func NewImage(headerSize uint32) *Image {
	return &Image{HeaderSize: headerSize}
}

// AddSection appends a section built from in-memory data to the section
// table. The section's length fields are derived from the data.
func (im *Image) AddSection(s Section) error {
	if len(im.Sections) >= MaxSections {
		return ErrSectionTableFull
	}
	s.Length = uint32(len(s.Data))
	s.ExpandedLength = uint32(len(s.Data))
	im.Sections = append(im.Sections, &s)
	return nil
}

// AddSectionFromFile reads the whole content file and appends it as a
// section.
func (im *Image) AddSectionFromFile(s Section, path string) error {
	if len(im.Sections) >= MaxSections {
		return ErrSectionTableFull
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", path, err)
	}
	s.Data = data
	return im.AddSection(s)
}

// Finalize computes the derived header fields: section copy offsets, the
// package load and expanded lengths, the timestamp (if not already set) and
// the name truncation. Call it once, after the last section has been added
// and the scalar fields have been assigned.
func (im *Image) Finalize() {
	im.LoadLength = 0
	im.ExpandedLen = 0
	var offset uint32
	for _, s := range im.Sections {
		if s.Type == SectionSignature {
			// Signatures and anything after them sit outside the loadable
			// region and are not placed at target offsets.
			break
		}
		if !s.Type.countable() {
			s.CopyOffset = 0
			continue
		}
		if s.HasLoadAddress {
			s.CopyOffset = s.LoadAddress - im.LoadBase
		} else {
			s.CopyOffset = offset
		}
		offset = s.CopyOffset + s.ExpandedLength
		if end := s.CopyOffset + s.Length; end > im.LoadLength {
			im.LoadLength = end
		}
		if end := s.CopyOffset + s.ExpandedLength; end > im.ExpandedLen {
			im.ExpandedLen = end
		}
	}
	if im.Timestamp == "" {
		im.Timestamp = time.Now().UTC().Format("20060102 150405")
	}
	if len(im.Name) > NameLength {
		im.Name = im.Name[:NameLength]
	}
}

// Collision is a pair of section indexes whose target ranges intersect.
type Collision struct {
	A, B int
}

// Collisions scans the section table for sections whose target ranges
// overlap. Each overlapping pair is reported once, lower index first.
// Signature sections and everything after them are ignored.
func (im *Image) Collisions() []Collision {
	var out []Collision
	for a := 0; a < len(im.Sections); a++ {
		sa := im.Sections[a]
		if sa.Type == SectionSignature {
			break
		}
		if !sa.Type.countable() || sa.ExpandedLength == 0 {
			continue
		}
		for b := a + 1; b < len(im.Sections); b++ {
			sb := im.Sections[b]
			if sb.Type == SectionSignature {
				break
			}
			if !sb.Type.countable() || sb.ExpandedLength == 0 {
				continue
			}
			if sb.end() >= sa.CopyOffset && sb.CopyOffset <= sa.end() {
				out = append(out, Collision{a, b})
			}
		}
	}
	return out
}

// Underflows returns the indexes of sections whose explicit load address
// lies below the package load base. Finalize computes their copy offsets
// with 32-bit wraparound, so callers should warn about them. Signature
// sections and everything after them are ignored.
func (im *Image) Underflows() []int {
	var out []int
	for i, s := range im.Sections {
		if s.Type == SectionSignature {
			break
		}
		if s.HasLoadAddress && s.LoadAddress < im.LoadBase {
			out = append(out, i)
		}
	}
	return out
}

// rawHeader is the on-disk header layout (little-endian, before padding).
type rawHeader struct {
	Sentinel      [4]byte
	HeaderSize    uint32
	Timestamp     [TimestampLength]byte
	Name          [NameLength]byte
	LoadLength    uint32
	LoadBase      uint32
	ExpandedLen   uint32
	StartLocation uint32
	UniproMfg     uint32
	UniproPid     uint32
	AraVid        uint32
	AraPid        uint32
	AraStage      uint32
	Sections      [MaxSections]rawSection
}

type rawSection struct {
	Length         uint32
	ExpandedLength uint32
	CopyOffset     uint32
	Type           uint32
	Class          uint32
	ID             uint32
}

// pack serializes the header into a buffer of exactly HeaderSize bytes.
func (im *Image) pack() []byte {
	var hdr rawHeader
	copy(hdr.Sentinel[:], Sentinel)
	hdr.HeaderSize = im.HeaderSize
	copy(hdr.Timestamp[:], im.Timestamp)
	copy(hdr.Name[:], im.Name)
	hdr.LoadLength = im.LoadLength
	hdr.LoadBase = im.LoadBase
	hdr.ExpandedLen = im.ExpandedLen
	hdr.StartLocation = im.StartLocation
	hdr.UniproMfg = im.UniproMfg
	hdr.UniproPid = im.UniproPid
	hdr.AraVid = im.AraVid
	hdr.AraPid = im.AraPid
	hdr.AraStage = im.AraStage
	for i, s := range im.Sections {
		hdr.Sections[i] = rawSection{
			Length:         s.Length,
			ExpandedLength: s.ExpandedLength,
			CopyOffset:     s.CopyOffset,
			Type:           uint32(s.Type),
			Class:          s.Class,
			ID:             s.ID,
		}
	}
	if len(im.Sections) < MaxSections {
		hdr.Sections[len(im.Sections)].Type = uint32(SectionEnd)
	}

	buf := bytes.NewBuffer(make([]byte, 0, im.HeaderSize))
	binary.Write(buf, binary.LittleEndian, &hdr)
	for buf.Len() < int(im.HeaderSize) {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// WriteFile writes the header and the section payloads to path. On any
// write error the partially written file is removed.
func (im *Image) WriteFile(path string) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", path, err)
	}
	if err := im.writeTo(w); err != nil {
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

func (im *Image) writeTo(w *os.File) error {
	if _, err := w.Write(im.pack()); err != nil {
		return err
	}
	for _, s := range im.Sections {
		if _, err := w.Write(s.Data); err != nil {
			return err
		}
	}
	return nil
}

// Open reads and parses an existing package. If path cannot be opened as
// given, path+FileExtension is tried before giving up.
func Open(path string) (*Image, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		var err2 error
		if buf, err2 = os.ReadFile(path + FileExtension); err2 != nil {
			return nil, err
		}
	}
	return Parse(buf)
}

// Parse decodes a package from a raw byte buffer.
func Parse(buf []byte) (*Image, error) {
	if len(buf) < fixedHdrLength+MaxSections*sectionDescLength {
		return nil, errors.New("file too short to hold a TFTF header")
	}
	var hdr rawHeader
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if string(hdr.Sentinel[:]) != Sentinel {
		return nil, errors.New("bad sentinel, not a TFTF file")
	}
	if hdr.HeaderSize < HdrSizeMin || hdr.HeaderSize > HdrSizeMax ||
		int(hdr.HeaderSize) > len(buf) {
		return nil, fmt.Errorf("bad header size %#x", hdr.HeaderSize)
	}
	im := &Image{
		HeaderSize:    hdr.HeaderSize,
		Timestamp:     cstr(hdr.Timestamp[:]),
		Name:          cstr(hdr.Name[:]),
		LoadLength:    hdr.LoadLength,
		LoadBase:      hdr.LoadBase,
		ExpandedLen:   hdr.ExpandedLen,
		StartLocation: hdr.StartLocation,
		UniproMfg:     hdr.UniproMfg,
		UniproPid:     hdr.UniproPid,
		AraVid:        hdr.AraVid,
		AraPid:        hdr.AraPid,
		AraStage:      hdr.AraStage,
	}
	offset := int(hdr.HeaderSize)
	for i := range hdr.Sections {
		rs := &hdr.Sections[i]
		typ := SectionType(rs.Type)
		if typ == SectionEnd || typ == SectionReserved {
			break
		}
		if !typ.valid() {
			return nil, fmt.Errorf("invalid section type %#02x at [%d]", rs.Type, i)
		}
		end := offset + int(rs.Length)
		if end > len(buf) {
			return nil, fmt.Errorf("section [%d] payload truncated", i)
		}
		im.Sections = append(im.Sections, &Section{
			Type:           typ,
			Class:          rs.Class,
			ID:             rs.ID,
			Length:         rs.Length,
			ExpandedLength: rs.ExpandedLength,
			CopyOffset:     rs.CopyOffset,
			Data:           buf[offset:end],
		})
		offset = end
	}
	return im, nil
}

// cstr trims a fixed-width, NUL padded header string.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
