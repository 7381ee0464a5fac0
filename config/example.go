package config

var ExampleYaml = `
devices:
  dial.study:
    caps: [dial, led]
protocols:
  powermate:
    event3: dial.study
endpoints:
  mqtt:
    broker: tcp://127.0.0.1:1883
metrics:
  addr: ":9131"
powermate:
  device: /dev/input/event3
  name: dial.study
  grab: true
  retry: 10s
`

var ExampleConfig *Config

func init() {
	var err error
	ExampleConfig, err = OpenRaw([]byte(ExampleYaml))
	if err != nil {
		panic(err)
	}
}
