// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tftftool",
		Short: "create and inspect TFTF firmware packages",
		Long: `Tftftool assembles code, data and manifest files into a TFTF
firmware package consumed by the secure boot loader, and inspects
existing packages.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCreateCmd())
	root.AddCommand(newDisplayCmd())
	root.AddCommand(newHexCmd())
	return root
}

// setupLogging configures the diagnostic logger. Warnings are always shown;
// verbose mode adds per-directive debug tracing.
func setupLogging(verbose bool) {
	log.SetReportTimestamp(false)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}
