package config

import (
	"io"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"time"

	"github.com/barnybug/powermate/pubsub"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type DeviceConf struct {
	Caps []string        `yaml:"caps"`
	Cap  map[string]bool `yaml:"-"`
}

type EndpointsConf struct {
	Mqtt struct {
		Broker string
	}
}

type Duration struct {
	Duration time.Duration
}

func (self *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	self.Duration = val
	return nil
}

type PowermateConf struct {
	// evdev device, eg. /dev/input/by-id/usb-Griffin_PowerMate-event-if00
	Device string
	// Name used for the device field of published events.
	Name string
	// Grab the device exclusively.
	Grab bool
	// Time to wait before reopening the device after it fails.
	Retry *Duration
}

type MetricsConf struct {
	Addr string
}

// Configuration structure
type Config struct {
	// yaml fields
	Devices   map[string]DeviceConf
	Protocols map[string]map[string]string
	Endpoints EndpointsConf
	Metrics   MetricsConf
	Powermate PowermateConf
}

const (
	DefaultDevice = "/dev/input/powermate"
	DefaultName   = "dial.powermate"
	DefaultRetry  = 5 * time.Second
)

// Open configuration from disk. POWERMATE_CONFIG overrides the default path.
func Open() (*Config, error) {
	filename := os.Getenv("POWERMATE_CONFIG")
	if filename == "" {
		filename = ConfigPath("powermate.yml")
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	defer file.Close()
	return OpenReader(file)
}

// Open configuration from a reader.
func OpenReader(r io.Reader) (*Config, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	return OpenRaw(data)
}

// Open configuration from []byte.
func OpenRaw(data []byte) (*Config, error) {
	self := &Config{}
	err := yaml.Unmarshal(data, self)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}

	for id, device := range self.Devices {
		if len(device.Caps) == 0 {
			major := strings.Split(id, ".")[0]
			device.Caps = []string{major}
		}
		device.Cap = map[string]bool{}
		for _, c := range device.Caps {
			device.Cap[c] = true
		}
		self.Devices[id] = device
	}

	if self.Powermate.Device == "" {
		self.Powermate.Device = DefaultDevice
	}
	if self.Powermate.Name == "" {
		self.Powermate.Name = DefaultName
	}
	if self.Powermate.Retry == nil {
		self.Powermate.Retry = &Duration{DefaultRetry}
	}

	return self, nil
}

// Set the device field of an event from its source, via the protocols
// mapping (eg. powermate: {event3: dial.study}).
func (self *Config) AddDeviceToEvent(ev *pubsub.Event) {
	// split source into protocol.id
	ps := strings.SplitN(ev.Source(), ".", 2)
	protocol := ps[0]
	var id string
	if len(ps) > 1 {
		id = ps[1]
	}
	device := self.Protocols[protocol][id]
	if device != "" {
		ev.SetField("device", device)
	}
}

// helpers

// Resolve a configuration file under .config/gohome
func ConfigPath(p string) string {
	config := os.Getenv("XDG_CONFIG_HOME")
	if config == "" {
		config = path.Join(os.Getenv("HOME"), ".config")
	}
	return path.Join(config, "gohome", p)
}
