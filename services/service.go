package services

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/barnybug/powermate/config"
	"github.com/barnybug/powermate/pubsub"
	"github.com/barnybug/powermate/pubsub/mqtt"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Service interface
type Service interface {
	ID() string
	Run() error
}

// ServiceInit interface
type ServiceInit interface {
	Service
	Init() error
}

type Flags interface {
	Flags()
}

var serviceMap = map[string]Service{}
var enabled []Service
var Config *config.Config

var Publisher pubsub.Publisher
var Subscriber pubsub.Subscriber

var broker *mqtt.Broker

// SetupBroker connects Publisher and Subscriber to the mqtt server given by
// GOHOME_MQTT, falling back to the configured endpoint.
func SetupBroker(name string) error {
	url := os.Getenv("GOHOME_MQTT")
	if url == "" && Config != nil {
		url = Config.Endpoints.Mqtt.Broker
	}
	if url == "" {
		return errors.New("set GOHOME_MQTT to the mqtt server. eg: tcp://127.0.0.1:1883")
	}

	mqtt.SetLogger(Log().Named("mqtt"))
	var err error
	broker, err = mqtt.NewBroker(url, name)
	if err != nil {
		return err
	}
	Publisher = broker.Publisher()
	Subscriber = broker.Subscriber()
	return nil
}

// Setup loads configuration and connects to the broker.
func Setup(name string) error {
	if Config == nil {
		conf, err := config.Open()
		if err != nil {
			return err
		}
		Config = conf
	}
	return SetupBroker(name)
}

func SetupFlags() {
	for _, service := range enabled {
		// any service specific flags
		if f, ok := service.(Flags); ok {
			f.Flags()
		}
	}
	flag.Parse()
}

// ServeMetrics exposes prometheus metrics on addr until the process exits.
func ServeMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		Log().Info("serving metrics", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			Log().Error("metrics server stopped", zap.Error(err))
		}
	}()
}

func Launch(ss []string) {
	enabled = []Service{}
	for _, name := range ss {
		if service, ok := serviceMap[name]; ok {
			enabled = append(enabled, service)
		} else {
			Log().Fatal("service does not exist", zap.String("service", name))
		}
	}

	SetupFlags()

	if Config != nil && Config.Metrics.Addr != "" {
		ServeMetrics(Config.Metrics.Addr)
	}

	// listen for commands
	go QuerySubscriber()

	for _, service := range enabled {
		Log().Info("starting", zap.String("service", service.ID()))
		if service, ok := service.(ServiceInit); ok {
			err := service.Init()
			if err != nil {
				Log().Fatal("error initializing service", zap.String("service", service.ID()), zap.Error(err))
			}
			Log().Info("initialized", zap.String("service", service.ID()))
		}
	}

	var wg sync.WaitGroup
	for _, service := range enabled {
		go Heartbeat(service.ID())
		wg.Add(1)
		go func(service Service) {
			defer wg.Done()
			err := service.Run()
			if err != nil {
				Log().Fatal("error running service", zap.String("service", service.ID()), zap.Error(err))
			}
		}(service)
	}
	wg.Wait()
}

func Heartbeat(id string) {
	started := time.Now()
	device := fmt.Sprintf("heartbeat.%s", id)
	fields := pubsub.Fields{
		"device":  device,
		"pid":     os.Getpid(),
		"started": started.Format(time.RFC3339),
	}

	// wait 5 seconds before heartbeating - if the process dies very soon
	time.Sleep(time.Second * 5)

	for {
		uptime := int(time.Since(started).Seconds())
		fields["uptime"] = uptime
		ev := pubsub.NewEvent("heartbeat", fields)
		ev.SetRetained(true)
		Publisher.Emit(ev)
		time.Sleep(time.Second * 60)
	}
}

func Register(service Service) {
	if _, exists := serviceMap[service.ID()]; exists {
		Log().Fatal("duplicate service registered", zap.String("service", service.ID()))
	}
	serviceMap[service.ID()] = service
}

func Shutdown() {
	if broker != nil {
		broker.Close()
	}
	Log().Sync()
}
