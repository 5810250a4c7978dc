// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tftf

import "fmt"

// SectionType identifies the meaning of a section's payload. The values are
// part of the on-disk format.
type SectionType uint32

const (
	SectionReserved    SectionType = 0x00
	SectionRawCode     SectionType = 0x01
	SectionRawData     SectionType = 0x02
	SectionManifest    SectionType = 0x05
	SectionSignature   SectionType = 0x80
	SectionCertificate SectionType = 0x81
	SectionEnd         SectionType = 0xfe // end-of-descriptors marker
)

func (t SectionType) String() string {
	switch t {
	case SectionReserved:
		return "reserved"
	case SectionRawCode:
		return "code"
	case SectionRawData:
		return "data"
	case SectionManifest:
		return "manifest"
	case SectionSignature:
		return "signature"
	case SectionCertificate:
		return "certificate"
	case SectionEnd:
		return "end of descriptors"
	}
	return fmt.Sprintf("unknown (%#02x)", uint32(t))
}

func (t SectionType) valid() bool {
	switch t {
	case SectionRawCode, SectionRawData, SectionManifest, SectionSignature,
		SectionCertificate, SectionEnd:
		return true
	}
	return false
}

// countable reports whether the section contributes to the package load
// length and to the running copy offset. Signature blocks cover the rest of
// the file and are excluded.
func (t SectionType) countable() bool {
	switch t {
	case SectionRawCode, SectionRawData, SectionManifest, SectionCertificate:
		return true
	}
	return false
}

// Section describes one content block embedded in the package.
//
// Length and ExpandedLength are derived from Data when the section is added
// to an Image. CopyOffset is computed by Finalize unless the section carries
// an explicit load address, in which case it becomes LoadAddress-LoadBase.
type Section struct {
	Type           SectionType
	Class          uint32
	ID             uint32
	Length         uint32
	ExpandedLength uint32
	CopyOffset     uint32
	LoadAddress    uint32
	HasLoadAddress bool
	Data           []byte
}

// end returns the last target offset covered by the section.
func (s *Section) end() uint32 {
	return s.CopyOffset + s.ExpandedLength - 1
}
