// Command dht20-prom exposes DHT20 readings as Prometheus metrics.
package main

import (
	"flag"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/sensorkit/dht20"
)

// CLI args
var (
	listenAddr   = flag.String("listen-address", ":8080", "The address to listen on for HTTP requests.")
	readInterval = flag.Duration("read-int", 30*time.Second, "time interval between sensor reads")
	busName      = flag.String("i2c-bus", "", "I²C bus name or number (empty selects the first available)")
)

// metrics to expose to Prometheus
var (
	gaugeHumidity    = newGauge("air_humidity", "Humidity (units: % of relative Humidity)")
	gaugeTemperature = newGauge("air_temperature", "Air Temperature (units: degrees Celsius)")
	counterReadFails = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sensor_read_failures_total",
		Help: "Number of failed sensor conversions",
	})
)

func newGauge(name string, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		[]string{"bus"},
	)
}

func init() {
	prometheus.MustRegister(gaugeHumidity)
	prometheus.MustRegister(gaugeTemperature)
	prometheus.MustRegister(counterReadFails)

	// Add Go module build info.
	prometheus.MustRegister(prometheus.NewBuildInfoCollector())

	//logging
	formatter := &log.TextFormatter{
		FullTimestamp: true,
	}
	log.SetFormatter(formatter)
}

func main() {
	flag.Parse()

	if _, err := host.Init(); err != nil {
		log.Fatalf("failed to initialize periph: %s", err)
	}
	bus, err := i2creg.Open(*busName)
	if err != nil {
		log.Fatalf("failed to open i2c bus: %s", err)
	}
	defer bus.Close()

	dev, err := dht20.NewI2C(bus, nil)
	if err != nil {
		log.Fatalf("failed to attach sensor: %s", err)
	}
	log.Printf("attached %s, reading every %s", dev, *readInterval)

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
		readAndUpdate(dev, bus.String())
		time.Sleep(*readInterval)
	}
}

func readAndUpdate(dev *dht20.Dev, bus string) {
	if _, err := dev.Temperature(); err != nil {
		counterReadFails.Inc()
		log.Errorf("failed to read from sensor: %s", err)
		return
	}
	t, h, _ := dev.LastSample()
	log.Printf("read temperature=%.2f°C humidity=%.2f%%", float64(t)/100, float64(h)/100)

	gaugeTemperature.WithLabelValues(bus).Set(float64(t) / 100)
	gaugeHumidity.WithLabelValues(bus).Set(float64(h) / 100)
}
