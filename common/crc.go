// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common holds helpers shared by drivers for Sensirion-style
// sensors, such as the CRC8 word checksum.
package common

// CRC8 calculates the 8-bit checksum the Sensirion sensor family appends to
// every 16 bit data word: polynomial 0x31, initialization 0xff, no
// reflection, no final XOR.
func CRC8(bytes []byte) byte {
	crc := byte(0xff)
	for _, val := range bytes {
		crc ^= val
		for i := 0; i < 8; i++ {
			if crc&0x80 == 0 {
				crc <<= 1
			} else {
				crc = (crc << 1) ^ 0x31
			}
		}
	}
	return crc
}
