package dht20

import "fmt"

type StatusError struct {
	Status byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("DHT20 status register abnormal: 0x%02X.", e.Status)
}

type TriggerError struct {
	Err error
}

func (e *TriggerError) Error() string {
	return fmt.Sprintf("DHT20 trigger command failed: %v.", e.Err)
}

func (e *TriggerError) Unwrap() error { return e.Err }

type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("DHT20 measurement read failed: %v.", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

type ConversionTimeoutError struct{}

func (e *ConversionTimeoutError) Error() string {
	return "Conversion timeout. DHT20 did not finish measurement in time."
}

type DataCorruptionError struct{}

func (e *DataCorruptionError) Error() string {
	return "Data is corrupt. The CRC8 hashes did not match."
}
