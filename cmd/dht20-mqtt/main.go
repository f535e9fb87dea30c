// Command dht20-mqtt periodically reads a DHT20 sensor and publishes the
// readings to the configured outputs (console and/or an MQTT broker).
package main

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/sensorkit/dht20"
	"github.com/sensorkit/dht20/internal/config"
	"github.com/sensorkit/dht20/internal/output"
	"github.com/sensorkit/dht20/internal/output/console"
	"github.com/sensorkit/dht20/internal/output/mqtt"
)

func buildOutputs(cfg config.Config) ([]output.Output, error) {
	outs := make([]output.Output, 0, len(cfg.Outputs))
	for _, name := range cfg.Outputs {
		switch name {
		case "console":
			outs = append(outs, console.NewConsole())
		case "mqtt":
			o, err := mqtt.NewMQTT(cfg.MQTT)
			if err != nil {
				return nil, err
			}
			outs = append(outs, o)
		default:
			return nil, fmt.Errorf("unknown output %q", name)
		}
	}
	return outs, nil
}

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatal(err)
	}

	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()

	dev, err := dht20.NewI2C(bus, nil)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("reading %s every %dms", dev, cfg.IntervalMs)

	outs, err := buildOutputs(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		for _, o := range outs {
			_ = o.Close()
		}
	}()

	ticker := time.NewTicker(time.Duration(cfg.IntervalMs) * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		if _, err := dev.Temperature(); err != nil {
			log.Printf("read error: %v", err)
			continue
		}
		t, h, at := dev.LastSample()
		r := output.Reading{
			Temperature:    float64(t) / 100,
			Humidity:       float64(h) / 100,
			RawTemperature: t,
			RawHumidity:    h,
			Timestamp:      at,
		}
		for _, o := range outs {
			if err := o.Publish(r); err != nil {
				log.Printf("publish error: %v", err)
			}
		}
	}
}
