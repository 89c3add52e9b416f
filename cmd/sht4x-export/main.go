// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// sht4x-export polls an SHT-4X sensor and exposes its readings as Prometheus
// metrics.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/sht4x"
)

// CLI args
var (
	listenAddr    = flag.String("listen-address", ":8080", "The address to listen on for HTTP requests.")
	readInterval  = flag.Duration("read-int", 30*time.Second, "time interval between sensor reads")
	busName       = flag.String("bus", "", "name of the I²C bus, empty for the first available")
	address       = flag.Uint("address", uint(sht4x.DefaultAddress), "I²C address of the sensor")
	repeatability = flag.String("repeatability", "high", "measurement repeatability: high, medium or low")
)

// metrics to expose to Prometheus
var (
	gaugeTemperature = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sht4x_temperature_celsius",
			Help: "Air temperature (units: degrees Celsius)",
		},
		[]string{"serial_number"},
	)
	gaugeHumidity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sht4x_humidity_percent",
			Help: "Relative humidity (units: % RH)",
		},
		[]string{"serial_number"},
	)
	counterReadErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sht4x_read_errors_total",
			Help: "Number of failed sensor reads",
		},
		[]string{"serial_number"},
	)
)

func init() {
	prometheus.MustRegister(gaugeTemperature)
	prometheus.MustRegister(gaugeHumidity)
	prometheus.MustRegister(counterReadErrors)

	// Add Go module build info.
	prometheus.MustRegister(prometheus.NewBuildInfoCollector())

	// logging
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	flag.Parse()

	rep, err := sht4x.ParseRepeatability(*repeatability)
	if err != nil {
		log.Fatal(err)
	}

	dev, err := openSensor(i2c.Addr(*address), rep)
	if err != nil {
		log.Fatal(err)
	}
	sn, err := dev.SerialNumber()
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to read serial number"))
	}
	serial := fmt.Sprintf("%08x", sn)
	log.Infof("found sensor: serial %s, repeatability %s", serial, rep)

	go func() {
		// Expose the registered metrics via HTTP.
		http.Handle("/metrics", promhttp.HandlerFor(
			prometheus.DefaultGatherer,
			promhttp.HandlerOpts{
				// Opt into OpenMetrics to support exemplars.
				EnableOpenMetrics: true,
			},
		))
		log.Panic(http.ListenAndServe(*listenAddr, nil))
	}()

	for {
		readAndPublish(dev, serial)
		time.Sleep(*readInterval)
	}
}

func openSensor(addr i2c.Addr, rep sht4x.Repeatability) (*sht4x.Dev, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize host")
	}
	bus, err := i2creg.Open(*busName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open I²C bus")
	}
	dev, err := sht4x.New(bus, addr)
	if err != nil {
		return nil, err
	}
	if err := dev.SetRepeatability(rep); err != nil {
		return nil, err
	}
	return dev, nil
}

func readAndPublish(dev *sht4x.Dev, serial string) {
	if err := dev.Update(); err != nil {
		// The gauges keep their last good values; the counter records the gap.
		log.Errorf("failed to read from sensor (serial %s): %s", serial, err)
		counterReadErrors.WithLabelValues(serial).Inc()
		return
	}
	r := dev.LastReading()
	log.Infof("read: temperature %s humidity %s", r.Temperature, r.Humidity)

	gaugeTemperature.WithLabelValues(serial).Set(r.Temperature.Celsius())
	gaugeHumidity.WithLabelValues(serial).Set(float64(r.Humidity) / float64(physic.PercentRH))
}
