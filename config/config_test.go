package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/barnybug/powermate/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var yml = `
protocols:
  powermate:
    event3: dial.study
`

func ExampleOpenRaw() {
	config, _ := OpenRaw([]byte(yml))
	fmt.Println(config.Powermate.Device)
	fmt.Println(config.Powermate.Name)
	fmt.Println(config.Powermate.Retry.Duration)
	// Output:
	// /dev/input/powermate
	// dial.powermate
	// 5s
}

func ExampleConfig_AddDeviceToEvent() {
	config, _ := OpenRaw([]byte(yml))
	ev := pubsub.NewEvent("powermate", pubsub.Fields{"source": "powermate.event3"})
	config.AddDeviceToEvent(ev)
	fmt.Println(ev.Device())
	// Output:
	// dial.study
}

func TestAddDeviceToEventMissing(t *testing.T) {
	config, err := OpenRaw([]byte(yml))
	require.NoError(t, err)
	ev := pubsub.NewEvent("powermate", pubsub.Fields{"source": "powermate.event9"})
	config.AddDeviceToEvent(ev)
	assert.Equal(t, "", ev.Device())
}

func TestExampleConfig(t *testing.T) {
	c := ExampleConfig
	assert.Equal(t, "/dev/input/event3", c.Powermate.Device)
	assert.Equal(t, "dial.study", c.Powermate.Name)
	assert.True(t, c.Powermate.Grab)
	assert.Equal(t, 10*time.Second, c.Powermate.Retry.Duration)
	assert.Equal(t, ":9131", c.Metrics.Addr)
	assert.Equal(t, "tcp://127.0.0.1:1883", c.Endpoints.Mqtt.Broker)

	dev := c.Devices["dial.study"]
	assert.True(t, dev.Cap["dial"])
	assert.True(t, dev.Cap["led"])
}

func TestDeviceCapsDefault(t *testing.T) {
	c, err := OpenRaw([]byte("devices:\n  dial.hall: {}\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"dial"}, c.Devices["dial.hall"].Caps)
	assert.False(t, c.Devices["dial.hall"].Cap["led"])
}

func TestOpenRawBad(t *testing.T) {
	_, err := OpenRaw([]byte("powermate: [\n"))
	assert.Error(t, err)

	_, err = OpenRaw([]byte("powermate:\n  retry: soon\n"))
	assert.Error(t, err)
}

func TestOpenFromEnv(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "powermate.yml")
	require.NoError(t, os.WriteFile(filename, []byte(ExampleYaml), 0644))
	t.Setenv("POWERMATE_CONFIG", filename)

	c, err := Open()
	require.NoError(t, err)
	assert.Equal(t, "dial.study", c.Powermate.Name)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/etc/xdg")
	assert.Equal(t, "/etc/xdg/gohome/powermate.yml", ConfigPath("powermate.yml"))
}
