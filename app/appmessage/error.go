// Copyright (c) 2013-2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package appmessage

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// MessageError describes an issue with a message.
// An example of some potential issues are messages from the wrong network,
// invalid commands, mismatched checksums, and exceeding max payloads.
//
// This provides a mechanism for the caller to type assert the error to
// differentiate between general io errors such as io.EOF and issues that
// resulted from malformed messages.
type MessageError struct {
	Func        string // Function name
	Description string // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e *MessageError) Error() string {
	if e.Func != "" {
		return fmt.Sprintf("%s: %s", e.Func, e.Description)
	}
	return e.Description
}

// messageError creates an error for the given function and description.
func messageError(f string, desc string) error {
	return errors.WithStack(&MessageError{Func: f, Description: desc})
}

// IsMalformedError returns whether err was caused by a truncated or
// malformed encoding rather than by the underlying writer or reader.
func IsMalformedError(err error) bool {
	var messageErr *MessageError
	return errors.As(err, &messageErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
