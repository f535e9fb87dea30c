// Package output defines the publishing side of the dht20 bridge binaries.
// Implementations live in subpackages.
package output

import "time"

// Reading is one successful conversion. The raw fields carry the sensor's
// scaled integer counts (hundredths of °C and %RH); the float fields are
// the same values in conventional units.
type Reading struct {
	Temperature    float64   `json:"temperature"`
	Humidity       float64   `json:"humidity"`
	RawTemperature int32     `json:"raw_temperature"`
	RawHumidity    int32     `json:"raw_humidity"`
	Timestamp      time.Time `json:"timestamp"`
}

type Output interface {
	Publish(Reading) error
	Close() error
}
