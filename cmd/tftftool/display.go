// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"

	"github.com/firmtools/tftftool/internal/tftf"
)

func newDisplayCmd() *cobra.Command {
	var withData bool
	cmd := &cobra.Command{
		Use:   "display PACKAGE",
		Short: "print the header of an existing TFTF package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			im, err := tftf.Open(args[0])
			if err != nil {
				return err
			}
			im.Display(cmd.OutOrStdout(), args[0])
			if withData {
				im.DisplayData(cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withData, "data", false,
		"also dump the section payloads")
	return cmd
}
