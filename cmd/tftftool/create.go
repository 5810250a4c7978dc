// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/firmtools/tftftool/internal/assemble"
	"github.com/firmtools/tftftool/internal/tftf"
)

type createState struct {
	dirs    []assemble.Directive
	params  assemble.Params
	verbose bool
	mapFile bool
}

func newCreateCmd() *cobra.Command {
	st := &createState{params: assemble.NewParams()}
	cmd := &cobra.Command{
		Use:   "create [--code|--data|--manifest|--elf FILE [--load N] [--class N] [--id N]]... [OPTIONS]",
		Short: "assemble a TFTF firmware package",
		Long: `Create assembles the given section files into a TFTF package.

Section options are processed in command-line order and may repeat. A
--load, --class or --id applies to the section opened immediately before
it. Numbers are decimal or hexadecimal with a 0x prefix.`,
		Args: cobra.NoArgs,
		RunE: st.run,
	}
	fs := cmd.Flags()
	fs.SortFlags = false
	d := &st.dirs
	fs.Var(&sectionValue{assemble.OpCode, "code", d}, "code",
		"add `file` as a code section")
	fs.Var(&sectionValue{assemble.OpData, "data", d}, "data",
		"add `file` as a data section")
	fs.Var(&sectionValue{assemble.OpManifest, "manifest", d}, "manifest",
		"add `file` as a manifest section")
	fs.Var(&sectionValue{assemble.OpELF, "elf", d}, "elf",
		"derive code/data sections from ELF `file`")
	fs.Var(&modifierValue{assemble.OpLoad, "load", d}, "load",
		"load address of the preceding section")
	fs.Var(&modifierValue{assemble.OpClass, "class", d}, "class",
		"class id of the preceding section")
	fs.Var(&modifierValue{assemble.OpID, "id", d}, "id",
		"section id of the preceding section")
	fs.Var(&strValue{"name", &st.params.Name, d}, "name",
		"firmware package name")
	fs.Var(&numValue{"start", &st.params.Start, &st.params.StartSet, d}, "start",
		"entry point address")
	fs.Var(&numValue{"header-size", &st.params.HeaderSize, nil, d}, "header-size",
		"header size in bytes")
	fs.Var(&numValue{"unipro-mfg", &st.params.UniproMfg, nil, d}, "unipro-mfg",
		"UniPro manufacturer id")
	fs.Var(&numValue{"unipro-pid", &st.params.UniproPid, nil, d}, "unipro-pid",
		"UniPro product id")
	fs.Var(&numValue{"ara-vid", &st.params.AraVid, nil, d}, "ara-vid",
		"Ara vendor id")
	fs.Var(&numValue{"ara-pid", &st.params.AraPid, nil, d}, "ara-pid",
		"Ara product id")
	fs.Var(&numValue{"ara-stage", &st.params.AraStage, nil, d}, "ara-stage",
		"boot stage (1-3)")
	fs.Var(&strValue{"out", &st.params.Out, d}, "out",
		"output `file` (derived from the id fields if omitted)")
	addBoolFlag(fs, &boolValue{"verbose", &st.verbose, d}, "v",
		"print a synopsis of the package after writing")
	addBoolFlag(fs, &boolValue{"map", &st.mapFile, d}, "m",
		"write a map of header field offsets next to the output file")
	return cmd
}

func (st *createState) run(cmd *cobra.Command, args []string) error {
	setupLogging(st.verbose)
	p := &st.params

	list, err := assemble.Run(st.dirs, p)
	if err != nil {
		return err
	}
	if err := assemble.Validate(list, p); err != nil {
		var ve *assemble.ValidationError
		if errors.As(err, &ve) && ve.Check == assemble.CheckSectionCount {
			return &exitError{exitTooBig, err}
		}
		return err
	}
	out := p.Out
	if filepath.Ext(out) == "" {
		out += tftf.FileExtension
	}

	im := tftf.NewImage(uint32(p.HeaderSize))
	im.Name = p.Name
	im.LoadBase = uint32(p.LoadBase)
	im.StartLocation = uint32(p.Start)
	im.UniproMfg = uint32(p.UniproMfg)
	im.UniproPid = uint32(p.UniproPid)
	im.AraVid = uint32(p.AraVid)
	im.AraPid = uint32(p.AraPid)
	im.AraStage = uint32(p.AraStage)
	for _, spec := range list {
		sec := tftf.Section{
			Type:           sectionType(spec.Kind),
			Class:          spec.Class,
			ID:             spec.ID,
			LoadAddress:    spec.LoadAddr,
			HasLoadAddress: spec.HasLoadAddr,
		}
		if spec.Path != "" {
			log.Debug("adding section", "kind", spec.Kind, "file", spec.Path)
			err = im.AddSectionFromFile(sec, spec.Path)
		} else {
			log.Debug("adding section", "kind", spec.Kind, "bytes", len(spec.Data))
			sec.Data = spec.Data
			err = im.AddSection(sec)
		}
		if err != nil {
			if errors.Is(err, tftf.ErrSectionTableFull) {
				return &exitError{exitTooBig, err}
			}
			return err
		}
	}
	im.Finalize()

	if err := im.WriteFile(out); err != nil {
		return &exitError{exitIOError, err}
	}
	if st.verbose {
		im.Display(cmd.OutOrStdout(), out)
	}
	for _, i := range im.Underflows() {
		s := im.Sections[i]
		log.Warnf("section %d load address %#010x is below the load base %#010x",
			i, s.LoadAddress, im.LoadBase)
	}
	for _, c := range im.Collisions() {
		a, b := im.Sections[c.A], im.Sections[c.B]
		log.Warnf("section %d (%#010x-%#010x) overlapped by section %d (%#010x-%#010x)",
			c.A, a.CopyOffset, a.CopyOffset+a.ExpandedLength-1,
			c.B, b.CopyOffset, b.CopyOffset+b.ExpandedLength-1)
	}
	if st.mapFile {
		if err := im.WriteMapFile(mapFileName(out), 0); err != nil {
			return &exitError{exitIOError, err}
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", out)
	return nil
}

func sectionType(kind assemble.SectionKind) tftf.SectionType {
	switch kind {
	case assemble.KindData:
		return tftf.SectionRawData
	case assemble.KindManifest:
		return tftf.SectionManifest
	}
	return tftf.SectionRawCode
}

func mapFileName(out string) string {
	return strings.TrimSuffix(out, filepath.Ext(out)) + ".map"
}
