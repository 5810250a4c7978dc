// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Tftftool creates and inspects TFTF firmware packages for the boot
// loader.
//
// Usage:
//
//	tftftool create --code fw.bin --load 0x60000000 --start 0x60000000
//	tftftool display PACKAGE
//	tftftool hex PACKAGE [HEX]
package main

import (
	"errors"
	"fmt"
	"os"
)

// Process exit statuses, following the errno convention of the original
// boot ROM tools.
const (
	exitInvalidArg = 22 // EINVAL: bad option, sequencing, extraction, validation
	exitIOError    = 5  // EIO: write failure
	exitTooBig     = 27 // EFBIG: section table overflow
)

// exitError carries a specific exit status out of a command handler.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status. Anything not
// explicitly tagged is an invalid-argument condition.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitInvalidArg
}
