package console

import (
	"fmt"
	"time"

	"github.com/sensorkit/dht20/internal/output"
)

type ConsoleOutput struct{}

func NewConsole() output.Output { return &ConsoleOutput{} }

func (c *ConsoleOutput) Publish(r output.Reading) error {
	_, err := fmt.Printf("%s temperature=%.2f humidity=%.2f\n",
		r.Timestamp.Format(time.RFC3339), r.Temperature, r.Humidity)
	return err
}

func (c *ConsoleOutput) Close() error { return nil }
