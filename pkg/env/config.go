// Package env sets up sessions from flags and environment variables.
package env

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/uvk5.go/pkg/clone"
	"github.com/robotalks/uvk5.go/pkg/layout"
	"github.com/robotalks/uvk5.go/pkg/link"
	"github.com/robotalks/uvk5.go/pkg/telemetry/mqtt"
	"github.com/robotalks/uvk5.go/pkg/uvk5"
	"github.com/robotalks/uvk5.go/pkg/uvk5/model"
	"github.com/robotalks/uvk5.go/pkg/uvk5/sim"
)

// SimPort selects the built-in simulator. "sim:FILE" preloads the
// simulator with an image file.
const SimPort = "sim"

// Config provides common options to open radio sessions.
type Config struct {
	// Port is a serial device, ws://host/path of a bridge, or sim.
	Port    string
	Timeout time.Duration
	Retries int
	// MQTTURL enables event publishing,
	// e.g. mqtt://host:1883/topic-prefix
	MQTTURL string
	// BandsFile is an INI band plan replacing the built-in one.
	BandsFile string
	// RadioID names the radio in published topics, the machine id by
	// default.
	RadioID string
}

var defaultConfig = Config{
	Timeout: link.DefaultTimeout,
	Retries: clone.DefaultRetries,
}

func init() {
	if val := os.Getenv("K5_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("K5_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			defaultConfig.Timeout = d
		}
	}
	if val := os.Getenv("K5_RETRIES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n >= 0 {
			defaultConfig.Retries = n
		}
	}
	if val := os.Getenv("K5_MQTT_URL"); val != "" {
		defaultConfig.MQTTURL = val
	}
	if val := os.Getenv("K5_BANDS"); val != "" {
		defaultConfig.BandsFile = val
	}
	if val := os.Getenv("K5_RADIO_ID"); val != "" {
		defaultConfig.RadioID = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port, ws:// bridge URL or sim.")
	flag.DurationVar(&defaultConfig.Timeout, "timeout", defaultConfig.Timeout, "Timeout of one exchange.")
	flag.IntVar(&defaultConfig.Retries, "retries", defaultConfig.Retries, "Retries of a failed block.")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL for session events.")
	flag.StringVar(&defaultConfig.BandsFile, "bands", defaultConfig.BandsFile, "Band plan INI file.")
	flag.StringVar(&defaultConfig.RadioID, "radio-id", defaultConfig.RadioID, "Radio ID in event topics.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// OpenPort opens name, or c.Port when name is empty.
func (c *Config) OpenPort(name string) (io.ReadWriteCloser, error) {
	if name == "" {
		name = c.Port
	}
	switch {
	case name == "":
		return nil, fmt.Errorf("no port specified")
	case name == SimPort || strings.HasPrefix(name, SimPort+":"):
		return openSim(strings.TrimPrefix(strings.TrimPrefix(name, SimPort), ":"))
	case strings.HasPrefix(name, "ws://") || strings.HasPrefix(name, "wss://"):
		return link.DialWebsocket(name)
	}
	return link.OpenSerial(name)
}

func openSim(file string) (io.ReadWriteCloser, error) {
	s := sim.New(uvk5.MemSize)
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, err := layout.ReadImage(f, uvk5.MemSize)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		s.SetMemory(img.Bytes())
	}
	glog.Infof("simulated radio %q", s.Firmware)
	return s.Open(), nil
}

// NewRadio opens a port and wraps it as a radio.
func (c *Config) NewRadio(name string) (*uvk5.Radio, error) {
	port, err := c.OpenPort(name)
	if err != nil {
		return nil, err
	}
	r := uvk5.NewRadio(port)
	r.Timeout = c.Timeout
	return r, nil
}

// EngineOptions returns the clone options from the config.
func (c *Config) EngineOptions() []clone.Option {
	return []clone.Option{clone.WithRetries(c.Retries)}
}

// Bands loads the band plan.
func (c *Config) Bands() (model.Bands, error) {
	if c.BandsFile == "" {
		return model.DefaultBands, nil
	}
	return model.LoadBands(c.BandsFile)
}

// ID returns the radio id used in topics.
func (c *Config) ID() string {
	if c.RadioID != "" {
		return c.RadioID
	}
	return MachineID()
}

// NewQueue creates an MQTT queue with an idle-state will for the radio.
// It returns nil without error when no broker is configured.
func (c *Config) NewQueue() (*mqtt.Queue, error) {
	if c.MQTTURL == "" {
		return nil, nil
	}
	opts, prefix, err := mqtt.ClientOptionsFromURL(c.MQTTURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT URL: %w", err)
	}
	if err := mqtt.SetWill(opts, prefix, c.ID()); err != nil {
		return nil, err
	}
	return mqtt.NewQueue(opts, prefix), nil
}
