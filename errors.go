// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sht4x

import (
	"errors"
	"fmt"
)

// ErrInvalidRepeatability is returned when a repeatability value or tag is
// not one of the three settings the sensor knows.
var ErrInvalidRepeatability = errors.New("invalid repeatability")

// ChecksumError reports a CRC mismatch on one of the two words of a response
// frame. It usually means the bus read raced the conversion or the wiring is
// marginal; the command can simply be retried.
type ChecksumError struct {
	// Word is 0 for the first data word of the frame, 1 for the second.
	Word int
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("sht4x: crc mismatch on word %d", e.Word)
}

// ShortReadError reports a response with fewer bytes than the command
// requires.
type ShortReadError struct {
	Want, Got int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("sht4x: short read: got %d bytes, want %d", e.Got, e.Want)
}
