// Copyright 2026 The Firmtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assemble

import "fmt"

// SequencingError reports a directive that is illegal at its position in
// the command line, or a directive the sequencer does not recognize.
type SequencingError struct {
	Option string // the offending option, e.g. "--load"
	Reason string
}

func (e *SequencingError) Error() string {
	return fmt.Sprintf("%s %s", e.Option, e.Reason)
}

// ExtractionError reports a failure to derive sections from an ELF file.
type ExtractionError struct {
	Path   string
	Reason string
	Err    error // underlying I/O or parse error, may be nil
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Validation check identifiers, one per constraint the validator enforces.
const (
	CheckSectionsPresent = "sections-present"
	CheckHeaderSize      = "header-size"
	CheckSectionCount    = "section-count"
	CheckNumericRange    = "numeric-range"
	CheckBootStage       = "boot-stage"
	CheckAddresses       = "addresses"
)

// ValidationError reports the first violated constraint found by Validate.
// Check is one of the Check* identifiers; the CLI maps CheckSectionCount to
// a distinct exit status.
type ValidationError struct {
	Check string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Msg }
