// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sht4x interfaces with the Sensirion SHT-40, SHT-41 and SHT-45
// temperature and relative humidity sensors over I²C.
//
// The sensor family speaks a single byte command protocol: write one command
// byte, wait for the conversion to finish, then read back six bytes holding
// two big-endian 16 bit words, each followed by an 8 bit CRC. The driver
// covers triggered measurements at the three repeatability settings, the soft
// reset and serial number commands, the on-chip heater, and periodic readout
// via SenseContinuous.
//
// # Datasheet
//
// https://sensirion.com/media/documents/33FD6951/67EB9032/HT_DS_Datasheet_SHT4x_5.pdf
package sht4x
