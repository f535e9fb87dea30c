// Copyright 2025 The DHT20 Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dht20 controls an ASAIR DHT20 device over I²C.
// The sensor is a temperature and humidity sensor with a typical accuracy of
// ±3% RH and ±0.5°C. The dht20.Dev type implements the physic.SenseEnv
// interface, and additionally exposes the two raw integer channels
// (hundredths of °C and hundredths of %RH) that the sensor's fixed point
// calibration produces.
//
// **Datasheet:** http://www.aosong.com/userfiles/files/media/Data%20Sheet%20DHT20.pdf
package dht20
