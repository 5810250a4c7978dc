// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assemble

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

type elfSeg struct {
	addr uint64
	data []byte
}

type elfEhdr struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

type elfShdr struct {
	Name      uint32
	Type      uint32
	Flags     uint64
	Addr      uint64
	Off       uint64
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

// writeELF emits a minimal ELF64 executable with the given .text and .data
// sections (either may be nil) to path.
func writeELF(t *testing.T, path string, entry uint64, text, data *elfSeg) {
	t.Helper()

	const ehsize, shentsize = 64, 64
	shstrtab := []byte("\x00.text\x00.data\x00.shstrtab\x00")
	const nameText, nameData, nameShstrtab = 1, 7, 13

	var payload bytes.Buffer
	shdrs := []elfShdr{{}} // index 0 is the NULL section
	if text != nil {
		shdrs = append(shdrs, elfShdr{
			Name: nameText, Type: 1 /* PROGBITS */, Flags: 0x6, /* ALLOC|EXECINSTR */
			Addr: text.addr, Off: uint64(ehsize + payload.Len()),
			Size: uint64(len(text.data)), Addralign: 4,
		})
		payload.Write(text.data)
	}
	if data != nil {
		shdrs = append(shdrs, elfShdr{
			Name: nameData, Type: 1, Flags: 0x3, /* WRITE|ALLOC */
			Addr: data.addr, Off: uint64(ehsize + payload.Len()),
			Size: uint64(len(data.data)), Addralign: 4,
		})
		payload.Write(data.data)
	}
	shdrs = append(shdrs, elfShdr{
		Name: nameShstrtab, Type: 3, /* STRTAB */
		Off:  uint64(ehsize + payload.Len()),
		Size: uint64(len(shstrtab)), Addralign: 1,
	})
	payload.Write(shstrtab)

	ehdr := elfEhdr{
		Type: 2 /* EXEC */, Machine: 183 /* AArch64 */, Version: 1,
		Entry:     entry,
		Shoff:     uint64(ehsize + payload.Len()),
		Ehsize:    ehsize,
		Shentsize: shentsize,
		Shnum:     uint16(len(shdrs)),
		Shstrndx:  uint16(len(shdrs) - 1),
	}
	copy(ehdr.Ident[:], "\x7fELF\x02\x01\x01")

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, &ehdr)
	buf.Write(payload.Bytes())
	for i := range shdrs {
		binary.Write(&buf, binary.LittleEndian, &shdrs[i])
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o666); err != nil {
		t.Fatal(err)
	}
}

func elfDir(path string) Directive {
	return Directive{Op: OpELF, Option: "--elf", Path: path}
}

func TestExtractELF(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "fw.elf")
	textData := []byte{0x13, 0x05, 0x00, 0x00, 0x6f, 0x00, 0x00, 0x00}
	dataData := []byte{1, 2, 3, 4}
	writeELF(t, path, 0x60000040,
		&elfSeg{0x60000000, textData}, &elfSeg{0x60001000, dataData})

	p := NewParams()
	list, err := Run([]Directive{elfDir(path)}, &p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d sections, want 2", len(list))
	}
	codeSec, dataSec := list[0], list[1]
	if codeSec.Kind != KindCode || dataSec.Kind != KindData {
		t.Fatalf("kinds = %v, %v, want code, data", codeSec.Kind, dataSec.Kind)
	}
	if !bytes.Equal(codeSec.Data, textData) || !bytes.Equal(dataSec.Data, dataData) {
		t.Error("section bytes do not match the ELF section contents")
	}
	if codeSec.Path != "" || dataSec.Path != "" {
		t.Error("ELF-derived sections must carry bytes, not file paths")
	}
	if !codeSec.HasLoadAddr || codeSec.LoadAddr != 0x60000000 {
		t.Errorf("code load address = %#x, want 0x60000000", codeSec.LoadAddr)
	}
	if !dataSec.HasLoadAddr || dataSec.LoadAddr != 0x60001000 {
		t.Errorf("data load address = %#x, want 0x60001000", dataSec.LoadAddr)
	}
	if !p.StartSet || p.Start != 0x60000040 {
		t.Errorf("entry point = %#x (set=%v), want 0x60000040", p.Start, p.StartSet)
	}
	if !p.LoadSet || p.LoadBase != 0x60000000 {
		t.Errorf("load base = %#x (set=%v), want code section address",
			p.LoadBase, p.LoadSet)
	}
}

func TestExtractELFInterleaved(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "fw.elf")
	writeELF(t, path, 0x100, &elfSeg{0x100, []byte{0xaa}}, nil)

	p := NewParams()
	list, err := Run([]Directive{
		manifest("m.mnfs"), elfDir(path), data("extra.bin"),
	}, &p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	kinds := make([]SectionKind, len(list))
	for i := range list {
		kinds[i] = list[i].Kind
	}
	want := []SectionKind{KindManifest, KindCode, KindData}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("section kinds = %v, want %v", kinds, want)
	}
}

func TestExtractELFWindow(t *testing.T) {
	t.Parallel()

	// Modifiers after --elf attach to the last derived section.
	dir := t.TempDir()
	path := filepath.Join(dir, "fw.elf")
	writeELF(t, path, 0, &elfSeg{0x100, []byte{1}}, &elfSeg{0x200, []byte{2}})

	p := NewParams()
	list, err := Run([]Directive{elfDir(path), class(9)}, &p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if list[0].Class != 0 || list[1].Class != 9 {
		t.Errorf("classes = %d, %d, want 0, 9", list[0].Class, list[1].Class)
	}
}

func TestExtractELFExplicitStartWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "fw.elf")
	writeELF(t, path, 0xdead, &elfSeg{0x100, []byte{1}}, nil)

	p := NewParams()
	p.Start, p.StartSet = 0x4000, true
	if _, err := Run([]Directive{elfDir(path)}, &p); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.Start != 0x4000 {
		t.Errorf("entry point = %#x, want the explicit 0x4000", p.Start)
	}
}

func TestExtractELFDataOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "fw.elf")
	writeELF(t, path, 0, nil, &elfSeg{0x2000, []byte{5, 6}})

	p := NewParams()
	list, err := Run([]Directive{elfDir(path)}, &p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(list) != 1 || list[0].Kind != KindData {
		t.Fatalf("sections = %+v, want one data section", list)
	}
}

func TestExtractELFErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.elf")
	writeELF(t, empty, 0, nil, nil)

	garbage := filepath.Join(dir, "garbage.elf")
	if err := os.WriteFile(garbage, []byte("this is not an ELF file"), 0o666); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		path   string
		reason string
	}{
		{"no usable sections", empty, "no usable sections"},
		{"missing file", filepath.Join(dir, "nope.elf"), "unable to open"},
		{"malformed file", garbage, "malformed ELF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := NewParams()
			_, err := Run([]Directive{elfDir(tt.path)}, &p)
			var ee *ExtractionError
			if !errors.As(err, &ee) {
				t.Fatalf("Run error = %v, want ExtractionError", err)
			}
			if !strings.Contains(ee.Error(), tt.reason) {
				t.Errorf("diagnostic %q does not contain %q", ee.Error(), tt.reason)
			}
		})
	}
}
