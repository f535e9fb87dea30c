// Package config holds the settings for the dht20 bridge binaries. Values
// come from an optional JSON file; flags override whatever the file set.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
)

type MQTTConfig struct {
	Server   string `json:"server"`
	Username string `json:"username"`
	Password string `json:"password"`
	ClientID string `json:"client_id"`
	Topic    string `json:"topic"`
}

type Config struct {
	I2CBus     string     `json:"i2c_bus"`
	IntervalMs int        `json:"interval_ms"`
	Outputs    []string   `json:"outputs"`
	MQTT       MQTTConfig `json:"mqtt"`
}

func DefaultConfig() Config {
	return Config{
		I2CBus:     "",
		IntervalMs: 5000,
		Outputs:    []string{"console"},
		MQTT: MQTTConfig{
			Server:   "tcp://localhost:1883",
			ClientID: "dht20-client",
			Topic:    "dht20",
		},
	}
}

// Load reads a JSON config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadFromFlags loads configuration from a JSON file (optional) and flags.
// Flags override values present in the JSON file.
func LoadFromFlags() (Config, error) {
	cfgPath := flag.String("config", "", "Path to JSON config file")
	flagI2CBus := flag.String("i2c-bus", "", "I²C bus (e.g., '1' -> /dev/i2c-1, empty selects the first available)")
	flagInterval := flag.Int("interval-ms", -1, "Read interval in ms")
	flagOutputs := flag.String("outputs", "", "Comma-separated outputs (console,mqtt)")
	flagMQTTServer := flag.String("mqtt-server", "", "MQTT server (tcp://host:port)")
	flagMQTTUser := flag.String("mqtt-user", "", "MQTT username")
	flagMQTTPass := flag.String("mqtt-pass", "", "MQTT password")
	flagClientID := flag.String("mqtt-client-id", "", "MQTT client id")
	flagTopic := flag.String("mqtt-topic", "", "MQTT topic")

	flag.Parse()

	cfg, err := Load(*cfgPath)
	if err != nil {
		return cfg, err
	}

	if *flagI2CBus != "" {
		cfg.I2CBus = *flagI2CBus
	}
	if *flagInterval != -1 {
		cfg.IntervalMs = *flagInterval
	}
	if *flagOutputs != "" {
		cfg.Outputs = parseCSV(*flagOutputs)
	}
	if *flagMQTTServer != "" {
		cfg.MQTT.Server = *flagMQTTServer
	}
	if *flagMQTTUser != "" {
		cfg.MQTT.Username = *flagMQTTUser
	}
	if *flagMQTTPass != "" {
		cfg.MQTT.Password = *flagMQTTPass
	}
	if *flagClientID != "" {
		cfg.MQTT.ClientID = *flagClientID
	}
	if *flagTopic != "" {
		cfg.MQTT.Topic = *flagTopic
	}

	if cfg.IntervalMs <= 0 {
		return cfg, errors.New("interval-ms must be > 0")
	}
	if len(cfg.Outputs) == 0 {
		return cfg, errors.New("at least one output is required")
	}

	return cfg, nil
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
