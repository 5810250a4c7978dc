// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/firmtools/tftftool/internal/hexdump"
	"github.com/firmtools/tftftool/internal/tftf"
)

func newHexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hex PACKAGE [HEX]",
		Short: "convert a TFTF package to the Intel HEX format",
		Long: `Hex lays the loadable sections of an existing package out at their
target addresses and writes the result as Intel HEX records. The output
name defaults to the package name with a .hex extension.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			im, err := tftf.Open(args[0])
			if err != nil {
				return err
			}
			out := strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".hex"
			if len(args) == 2 {
				out = args[1]
			}
			w, err := os.Create(out)
			if err != nil {
				return &exitError{exitIOError, err}
			}
			if err := hexdump.Dump(im, w); err != nil {
				w.Close()
				os.Remove(out)
				return &exitError{exitIOError, err}
			}
			if err := w.Close(); err != nil {
				return &exitError{exitIOError, err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", out)
			return nil
		},
	}
}
