// Copyright 2025 The DHT20 Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht20

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const deviceAddress = 0x38

const (
	cmdStatus    byte = 0x71
	cmdMeasure   byte = 0xAC
	cmdSoftReset byte = 0xBA
)

const (
	bitBusy byte = 1 << 7

	// Calibration bits that must both be set in the status register for the
	// device to be usable.
	statusReady byte = 0x18
)

var argsMeasure = []byte{cmdMeasure, 0x33, 0x00}

const (
	// Minimum measurement time after the trigger before the first poll.
	measureDelay = 50 * time.Millisecond
	// Interval between poll attempts while the busy flag is set.
	pollInterval = 5 * time.Millisecond
	// Poll attempts before the conversion is abandoned.
	maxPollAttempts = 10
	// Settle time after attach before the device is ready for first use.
	setupDelay = 100 * time.Millisecond
)

const crc8Polynomial = uint8(0b00110001) // p(x) = x^8 + x^5 + x^4 + 1. x^8 is omitted due to byte size

// Dev is a handle to a DHT20 sensor. The last decoded readings and their
// timestamp are guarded by mu, which is held for the whole of every
// conversion sequence. The device has a single conversion slot, so
// concurrent callers queue and run one full sequence at a time.
type Dev struct {
	opts Opts
	d    *i2c.Dev
	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup

	lastSample  time.Time
	temperature int32
	humidity    int32
}

// Opts holds the configuration options for the device.
type Opts struct {
	// ValidateData enables data validation using CRC8. If enabled, a
	// completed measurement whose checksum byte does not match is rejected
	// with a DataCorruptionError. Default is true.
	ValidateData bool
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{
	ValidateData: true,
}

// NewI2C returns an object that communicates over I²C to a DHT20 humidity
// and temperature sensor. The status register is checked once at attach
// time; a sensor that does not report the calibrated, ready pattern is
// unusable and the error is fatal to the handle. The device needs 100ms
// after setup before the first measurement. The Opts can be nil.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}

	d := &Dev{d: &i2c.Dev{Bus: b, Addr: deviceAddress}, opts: *opts}
	status := make([]byte, 1)
	if err := d.d.Tx([]byte{cmdStatus}, status); err != nil {
		return nil, fmt.Errorf("dht20: reading status register: %w", err)
	}
	if status[0]&statusReady != statusReady {
		return nil, &StatusError{Status: status[0]}
	}
	time.Sleep(setupDelay)
	return d, nil
}

// update runs one full conversion: status check, trigger, settle, poll and
// decode. The mutex is held for the entire sequence including the waits, so
// protocol steps from concurrent callers never interleave on the bus. A
// failed conversion leaves the stored readings and timestamp untouched.
func (d *Dev) update() (temperature, humidity int32, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := make([]byte, 1)
	if err := d.d.Tx([]byte{cmdStatus}, status); err != nil {
		return 0, 0, fmt.Errorf("dht20: reading status register: %w", err)
	}
	if status[0]&statusReady != statusReady {
		return 0, 0, &StatusError{Status: status[0]}
	}

	if err := d.d.Tx(argsMeasure, nil); err != nil {
		return 0, 0, &TriggerError{Err: err}
	}
	time.Sleep(measureDelay)

	buf := make([]byte, 7)
	for i := 0; i < maxPollAttempts; i++ {
		if err := d.d.Tx(nil, buf); err != nil {
			return 0, 0, &ReadError{Err: err}
		}
		if buf[0]&bitBusy == 0 {
			sampledAt := time.Now()
			if d.opts.ValidateData && crc8(buf[:6]) != buf[6] {
				return 0, 0, &DataCorruptionError{}
			}
			temperature, humidity = decode(buf)
			d.temperature, d.humidity, d.lastSample = temperature, humidity, sampledAt
			return temperature, humidity, nil
		}
		time.Sleep(pollInterval)
	}
	return 0, 0, &ConversionTimeoutError{}
}

// decode assembles the two 20 bit counts packed into a 7 byte measurement
// and applies the fixed point calibration. The high nibble of byte 3
// belongs to the humidity count, the low nibble to the temperature count.
// The multiply happens before the truncating shift, and the temperature
// offset is subtracted after scaling.
func decode(buf []byte) (temperature, humidity int32) {
	hRaw := uint32(buf[1])<<12 | uint32(buf[2])<<4 | uint32(buf[3])>>4
	tRaw := uint32(buf[3]&0x0F)<<16 | uint32(buf[4])<<8 | uint32(buf[5])

	humidity = int32(uint64(hRaw) * 10000 >> 20)
	temperature = int32(uint64(tRaw)*20000>>20) - 5000
	return temperature, humidity
}

// Temperature triggers a conversion and returns the temperature reading in
// hundredths of a degree Celsius.
func (d *Dev) Temperature() (int32, error) {
	t, _, err := d.update()
	if err != nil {
		return 0, err
	}
	return t, nil
}

// Humidity triggers a conversion and returns the relative humidity reading
// in hundredths of a percent.
func (d *Dev) Humidity() (int32, error) {
	_, h, err := d.update()
	if err != nil {
		return 0, err
	}
	return h, nil
}

// LastSample returns the readings and time of the most recent successful
// conversion without touching the device. The zero time means no conversion
// has succeeded yet.
func (d *Dev) LastSample() (temperature, humidity int32, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.temperature, d.humidity, d.lastSample
}

// Sense implements physic.SenseEnv. It returns the current temperature and
// humidity, the pressure is always 0 since the DHT20 does not measure
// pressure. A measurement takes at least 50ms and blocks for its whole
// duration; the call is not cancellable mid-sequence, so a caller that
// wants a deadline has to impose it around the call.
func (d *Dev) Sense(e *physic.Env) error {
	t, h, err := d.update()
	if err != nil {
		return err
	}
	e.Temperature = physic.Temperature(t)*(physic.Kelvin/100) + physic.ZeroCelsius
	e.Humidity = physic.RelativeHumidity(h) * (physic.PercentRH / 100)
	e.Pressure = 0
	return nil
}

// SenseContinuous implements physic.SenseEnv. It returns a channel that will
// receive a measurement every interval. It is the caller's responsibility to
// call Halt() when done. The sensor tries to read the measurement at the
// given interval however it may take longer if the sensor is busy.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wg.Add(1)

	sensing := make(chan physic.Env)
	d.stop = make(chan struct{})
	go func() {
		defer d.wg.Done()
		defer close(sensing)
		dMeasurement := 100 * time.Millisecond // duration of last measurement
		for {
			select {
			case <-d.stop:
				return
			case <-time.After(interval - dMeasurement):
				var e physic.Env
				now := time.Now()
				if err := d.Sense(&e); err == nil {
					sensing <- e
				}
				dMeasurement = time.Since(now)
			}
		}
	}()
	return sensing, nil
}

// Precision implements physic.SenseEnv.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = 10 * physic.MilliKelvin
	e.Humidity = 10 * physic.MilliRH
	e.Pressure = 0
}

// SoftReset resets the sensor. It includes a reboot and a re-calibration.
func (d *Dev) SoftReset() error {
	if err := d.d.Tx([]byte{cmdSoftReset}, nil); err != nil {
		return fmt.Errorf("dht20: sending soft reset: %w", err)
	}
	time.Sleep(20 * time.Millisecond) // wait for 20ms according to datasheet
	return nil
}

// Halt stops the DHT20 from acquiring measurements as initiated by
// SenseContinuous().
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.wg.Wait()
	d.stop = nil
	return nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("dht20: %s", d.d)
}

func crc8(data []byte) uint8 {
	var crc uint8 = 0xFF // initial value according to datasheet

	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ crc8Polynomial
			} else {
				crc <<= 1
			}
		}
	}

	return crc
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
