// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// sht4xread triggers a single measurement on an SHT-4X and prints the result.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/sht4x"
)

func main() {
	busName := flag.String("bus", "", "name of the I²C bus, empty for the first available")
	address := flag.Uint("address", uint(sht4x.DefaultAddress), "I²C address of the sensor")
	repeatability := flag.String("repeatability", "high", "measurement repeatability: high, medium or low")
	flag.Parse()

	rep, err := sht4x.ParseRepeatability(*repeatability)
	if err != nil {
		log.Fatal(err)
	}

	if _, err := host.Init(); err != nil {
		log.Fatal(errors.Wrap(err, "initializing host"))
	}
	bus, err := i2creg.Open(*busName)
	if err != nil {
		log.Fatal(errors.Wrap(err, "opening I²C bus"))
	}
	defer bus.Close()

	dev, err := sht4x.New(bus, i2c.Addr(*address))
	if err != nil {
		log.Fatal(err)
	}
	if err := dev.SetRepeatability(rep); err != nil {
		log.Fatal(err)
	}

	sn, err := dev.SerialNumber()
	if err != nil {
		log.Fatal(errors.Wrap(err, "reading serial number"))
	}
	fmt.Printf("Serial: %#08x\n", sn)

	if err := dev.Update(); err != nil {
		log.Fatal(errors.Wrap(err, "reading sensor"))
	}
	r := dev.LastReading()
	fmt.Printf("Temperature: %.2f °C\nHumidity: %s\n", r.Temperature.Celsius(), r.Humidity)
}
