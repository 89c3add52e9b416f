// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sht4x

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/sht4x/common"
)

// Repeatability selects the measurement accuracy. Higher repeatability means
// a longer conversion time and a higher current draw.
type Repeatability int

const (
	RepeatabilityHigh Repeatability = iota
	RepeatabilityMedium
	RepeatabilityLow
)

// Each repeatability setting has its own trigger command and conversion time.
// Reading back before the conversion has finished makes the device NAK the
// read, so the wait is part of the transaction.
var repeatabilitySettings = [...]struct {
	tag     string
	command byte
	wait    time.Duration
}{
	RepeatabilityHigh:   {"high", 0xfd, 10 * time.Millisecond},
	RepeatabilityMedium: {"medium", 0xf6, 5 * time.Millisecond},
	RepeatabilityLow:    {"low", 0xe0, 2 * time.Millisecond},
}

// String returns the setting's tag, one of "high", "medium" or "low".
func (r Repeatability) String() string {
	if r < RepeatabilityHigh || r > RepeatabilityLow {
		return fmt.Sprintf("Repeatability(%d)", int(r))
	}
	return repeatabilitySettings[r].tag
}

// ParseRepeatability converts a tag to its Repeatability value. Tags other
// than "high", "medium" and "low" yield ErrInvalidRepeatability.
func ParseRepeatability(tag string) (Repeatability, error) {
	for r, s := range repeatabilitySettings {
		if s.tag == tag {
			return Repeatability(r), nil
		}
	}
	return 0, fmt.Errorf("sht4x: unknown repeatability %q: %w", tag, ErrInvalidRepeatability)
}

// HeaterPower represents a type for the heater power setting.
type HeaterPower int

// HeaterDuration represents a duration for turning the heater on.
type HeaterDuration time.Duration

const (
	// Power settings for the heater element.
	Power20mW HeaterPower = iota
	Power110mW
	Power200mW

	// Durations that you can turn the heater on for.
	Duration100ms HeaterDuration = HeaterDuration(100 * time.Millisecond)
	Duration1s    HeaterDuration = HeaterDuration(time.Second)

	// Default I2C address. The B variants of the family listen on
	// AlternateAddress instead.
	DefaultAddress   i2c.Addr = 0x44
	AlternateAddress i2c.Addr = 0x45
)

const (
	cmdSoftReset        byte = 0x94
	cmdReadSerialNumber byte = 0x89

	cmdHeater200mW1s    byte = 0x39
	cmdHeater200mW100ms byte = 0x32
	cmdHeater110mW1s    byte = 0x2f
	cmdHeater110mW100ms byte = 0x24
	cmdHeater20mW1s     byte = 0x1e
	cmdHeater20mW100ms  byte = 0x15

	// Every data-bearing response is two big-endian words, each followed by
	// its CRC byte.
	frameSize = 6

	countDivisor = float64(65535)

	// The soft reset and serial number commands are ready after tPU.
	resetWait  = time.Millisecond
	serialWait = time.Millisecond

	minRH = 0 * physic.PercentRH
	maxRH = 100 * physic.PercentRH

	minSampleInterval = 10 * time.Millisecond
)

var heaterCommands = map[HeaterDuration][3]byte{
	Duration100ms: {Power20mW: cmdHeater20mW100ms, Power110mW: cmdHeater110mW100ms, Power200mW: cmdHeater200mW100ms},
	Duration1s:    {Power20mW: cmdHeater20mW1s, Power110mW: cmdHeater110mW1s, Power200mW: cmdHeater200mW1s},
}

// Reading is a decoded measurement. The zero value, with Valid false, is what
// a Dev reports until its first successful Update.
type Reading struct {
	Temperature physic.Temperature
	Humidity    physic.RelativeHumidity
	Valid       bool
}

// Dev represents a SHT-4X series temperature/humidity sensor.
type Dev struct {
	d             *i2c.Dev
	sleep         func(time.Duration)
	mu            sync.Mutex
	repeatability Repeatability
	last          Reading
	shutdown      chan struct{}
}

// New returns a driver for the SHT-4X at addr on the given bus. The device
// starts out measuring at RepeatabilityHigh.
func New(bus i2c.Bus, addr i2c.Addr) (*Dev, error) {
	return &Dev{
		d:     &i2c.Dev{Bus: bus, Addr: uint16(addr)},
		sleep: time.Sleep,
	}, nil
}

// decodeFrame splits a response frame into its two big-endian words after
// checking each word's CRC.
func decodeFrame(r []byte) (uint16, uint16, error) {
	if len(r) < frameSize {
		return 0, 0, &ShortReadError{Want: frameSize, Got: len(r)}
	}
	if common.CRC8(r[:2]) != r[2] {
		return 0, 0, &ChecksumError{Word: 0}
	}
	if common.CRC8(r[3:5]) != r[5] {
		return 0, 0, &ChecksumError{Word: 1}
	}
	return uint16(r[0])<<8 | uint16(r[1]), uint16(r[3])<<8 | uint16(r[4]), nil
}

// command runs one sensor transaction: write the command byte, wait out the
// conversion, read back a frame and decode it. The caller must hold d.mu.
func (d *Dev) command(cmd byte, wait time.Duration) (uint16, uint16, error) {
	if err := d.d.Tx([]byte{cmd}, nil); err != nil {
		return 0, 0, fmt.Errorf("sht4x: error transmitting command %#02x: %w", cmd, err)
	}
	d.sleep(wait)
	r := make([]byte, frameSize)
	if err := d.d.Tx(nil, r); err != nil {
		return 0, 0, fmt.Errorf("sht4x: error reading response: %w", err)
	}
	return decodeFrame(r)
}

// countToTemp converts a raw count to a temperature.
func countToTemp(count uint16) physic.Temperature {
	// T = -45 + 175*(count/65535)
	return physic.Temperature(float64(physic.Kelvin)*(-45.0+175.0*(float64(count)/countDivisor))) + physic.ZeroCelsius
}

// countToHumidity converts a raw count to a relative humidity. The linear
// formula can run slightly past the physical range near the extremes, so the
// result is clamped to [0%, 100%].
func countToHumidity(count uint16) physic.RelativeHumidity {
	// RH = -6 + 125*(count/65535)
	val := physic.RelativeHumidity((-6.0 + 125.0*(float64(count)/countDivisor)) * float64(physic.PercentRH))
	if val < minRH {
		val = minRH
	} else if val > maxRH {
		val = maxRH
	}
	return val
}

// Update triggers a measurement at the current repeatability and stores the
// decoded result. The stored reading is replaced only when the whole
// transaction succeeds; any failure leaves the previous reading in place and
// is reported to the caller.
func (d *Dev) Update() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := repeatabilitySettings[d.repeatability]
	rawT, rawRH, err := d.command(s.command, s.wait)
	if err != nil {
		return err
	}
	d.last = Reading{
		Temperature: countToTemp(rawT),
		Humidity:    countToHumidity(rawRH),
		Valid:       true,
	}
	return nil
}

// LastReading returns the result of the most recent successful Update. Valid
// is false until an Update has succeeded.
func (d *Dev) LastReading() Reading {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Temperature returns the temperature from the most recent successful Update.
func (d *Dev) Temperature() physic.Temperature {
	return d.LastReading().Temperature
}

// Humidity returns the relative humidity from the most recent successful
// Update.
func (d *Dev) Humidity() physic.RelativeHumidity {
	return d.LastReading().Humidity
}

// Repeatability returns the measurement setting in effect.
func (d *Dev) Repeatability() Repeatability {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.repeatability
}

// SetRepeatability changes the setting used by subsequent measurements.
// Values outside the three defined settings return ErrInvalidRepeatability
// and leave the current setting in effect.
func (d *Dev) SetRepeatability(r Repeatability) error {
	if r < RepeatabilityHigh || r > RepeatabilityLow {
		return fmt.Errorf("sht4x: repeatability %d: %w", int(r), ErrInvalidRepeatability)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.repeatability = r
	return nil
}

// Sense reads temperature and humidity from the device. Implements
// physic.SenseEnv.
func (d *Dev) Sense(e *physic.Env) error {
	e.Pressure = 0
	if err := d.Update(); err != nil {
		return err
	}
	r := d.LastReading()
	e.Temperature = r.Temperature
	e.Humidity = r.Humidity
	return nil
}

// SenseContinuous measures on every interval tick and sends the results to
// the returned channel. Failed measurements are skipped. To terminate the
// readout, call Halt.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if d.shutdown != nil {
		return nil, errors.New("sht4x: SenseContinuous already running")
	}
	if interval < minSampleInterval {
		return nil, errors.New("sht4x: sample interval is < device sample rate")
	}
	d.shutdown = make(chan struct{})
	ch := make(chan physic.Env, 16)
	go func(ch chan<- physic.Env) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(ch)
		for {
			select {
			case <-d.shutdown:
				d.mu.Lock()
				defer d.mu.Unlock()
				d.shutdown = nil
				return
			case <-ticker.C:
				env := physic.Env{}
				if err := d.Sense(&env); err == nil {
					ch <- env
				}
			}
		}
	}(ch)
	return ch, nil
}

// Precision returns the smallest change in readings the device can produce.
// Implements physic.SenseEnv.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = physic.Kelvin / 100
	e.Humidity = physic.PercentRH / 100
	e.Pressure = 0
}

// Halt shuts down the device and terminates a SenseContinuous command if
// running. Implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shutdown != nil {
		close(d.shutdown)
	}
	return nil
}

// Reset issues a soft-reset to the device. The sensor does not answer the
// command, so success means only that the bus write went through.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.d.Tx([]byte{cmdSoftReset}, nil); err != nil {
		return fmt.Errorf("sht4x: error resetting: %w", err)
	}
	d.sleep(resetWait)
	return nil
}

// SerialNumber returns the device serial number set at the factory, composed
// from the two CRC-checked words of the response.
func (d *Dev) SerialNumber() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	word0, word1, err := d.command(cmdReadSerialNumber, serialWait)
	if err != nil {
		return 0, err
	}
	return uint32(word0)<<16 | uint32(word1), nil
}

// SetHeater enables the sensor's heater at the given power level for the
// given duration. The heater turns itself off afterwards; enabling it can
// allow operation in condensing environments. The sensor couples the heater
// pulse with a high repeatability measurement, whose result is returned.
// Refer to section 4.9 of the datasheet.
func (d *Dev) SetHeater(powerLevel HeaterPower, duration HeaterDuration) (physic.Env, error) {
	env := physic.Env{}
	cmds, ok := heaterCommands[duration]
	if !ok {
		return env, errors.New("sht4x: invalid heater duration")
	}
	if powerLevel < Power20mW || powerLevel > Power200mW {
		return env, errors.New("sht4x: invalid heater power")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	rawT, rawRH, err := d.command(cmds[powerLevel], time.Duration(duration)+10*time.Millisecond)
	if err != nil {
		return env, fmt.Errorf("sht4x: error setting heater: %w", err)
	}
	env.Temperature = countToTemp(rawT)
	env.Humidity = countToHumidity(rawRH)
	return env, nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("sht4x{%s}", d.d)
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
