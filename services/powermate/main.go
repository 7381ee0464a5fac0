// Service to publish events from a Griffin PowerMate USB dial.
//
// Rotating the dial publishes "rotate" events with the relative movement as
// value, pressing and releasing the knob publish "press" and "release". The
// blue LED underneath is set by sending a command to the configured device
// name: "on", "off", "level" (with a level field of 0-255) or "pulse".
//
// The service also answers the "size" query with the size of the input
// event record, as {ok, N}, for callers checking buffer sizes before
// decoding raw events themselves.
package powermate

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/barnybug/powermate/lib/cstruct"
	"github.com/barnybug/powermate/lib/evdev"
	"github.com/barnybug/powermate/pubsub"
	"github.com/barnybug/powermate/services"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type eventWriter interface {
	Write(ev evdev.InputEvent) error
}

// Service powermate
type Service struct {
	devname string
	name    string
	source  string
	grab    bool
	retry   time.Duration

	mu     sync.Mutex
	writer eventWriter // the open device, nil while disconnected

	decoded        uint64
	published      uint64
	decodeFailures uint64
	deviceFailures uint64
}

// ID of the service
func (self *Service) ID() string {
	return "powermate"
}

func (self *Service) log() *zap.Logger {
	return services.Log().Named("powermate")
}

// Init reads the device settings from configuration.
func (self *Service) Init() error {
	if services.Config == nil {
		return errors.New("powermate: no configuration loaded")
	}
	conf := services.Config.Powermate
	self.devname = conf.Device
	self.name = conf.Name
	self.grab = conf.Grab
	self.retry = conf.Retry.Duration
	self.source = "powermate." + filepath.Base(conf.Device)
	return nil
}

func (self *Service) QueryHandlers() services.QueryHandlers {
	handlers := services.QueryHandlers{
		"size":   querySize,
		"status": services.TextHandler(self.queryStatus),
	}
	handlers["help"] = services.HelpHandler(handlers)
	return handlers
}

func querySize(q services.Question) services.Answer {
	r := cstruct.StructSize()
	return services.Answer{Text: r.String(), Json: r}
}

func (self *Service) queryStatus(q services.Question) string {
	return fmt.Sprintf("%s on %s: %d events decoded, %d published, %d decode errors, %d device errors",
		self.name, self.devname,
		atomic.LoadUint64(&self.decoded),
		atomic.LoadUint64(&self.published),
		atomic.LoadUint64(&self.decodeFailures),
		atomic.LoadUint64(&self.deviceFailures))
}

func typeName(t uint16) string {
	switch t {
	case evdev.EV_SYN:
		return "syn"
	case evdev.EV_KEY:
		return "key"
	case evdev.EV_REL:
		return "rel"
	case evdev.EV_MSC:
		return "msc"
	}
	return "other"
}

// translate an input event to a bus event, or nil if it is not one the
// dial produces.
func (self *Service) translate(ev evdev.InputEvent) *pubsub.Event {
	var command string
	switch {
	case ev.Type == evdev.EV_REL && ev.Code == evdev.REL_DIAL:
		command = "rotate"
	case ev.Type == evdev.EV_KEY && ev.Code == evdev.BTN_0 && ev.Value == 1:
		command = "press"
	case ev.Type == evdev.EV_KEY && ev.Code == evdev.BTN_0 && ev.Value == 0:
		command = "release"
	default:
		return nil
	}
	fields := pubsub.Fields{
		"source":  self.source,
		"device":  self.name,
		"command": command,
		"value":   int(ev.Value),
	}
	event := pubsub.NewEvent("powermate", fields)
	event.Timestamp = ev.Timestamp().UTC()
	return event
}

func (self *Service) handle(ev evdev.InputEvent) {
	atomic.AddUint64(&self.decoded, 1)
	eventsTotal.WithLabelValues(typeName(ev.Type)).Inc()
	out := self.translate(ev)
	if out == nil {
		return
	}
	services.Config.AddDeviceToEvent(out)
	services.Publisher.Emit(out)
	atomic.AddUint64(&self.published, 1)
}

// ledValue packs the MSC_PULSELED value: brightness in bits 0-7, pulse
// speed in 8-16, pulse table in 17-18, pulse asleep bit 19, pulse awake
// bit 20.
func ledValue(brightness, speed, table int, asleep, awake bool) int32 {
	v := int32(brightness&0xff) | int32(speed&0x1ff)<<8 | int32(table&0x3)<<17
	if asleep {
		v |= 1 << 19
	}
	if awake {
		v |= 1 << 20
	}
	return v
}

// ledCommand maps a command event to the LED value to write.
func ledCommand(ev *pubsub.Event) (int32, error) {
	switch ev.Command() {
	case "on":
		return ledValue(255, 0, 0, false, false), nil
	case "off":
		return ledValue(0, 0, 0, false, false), nil
	case "level":
		if _, ok := ev.Fields["level"]; !ok {
			return 0, errors.New("level command without a level field")
		}
		level := ev.IntField("level")
		if level < 0 || level > 255 {
			return 0, errors.Errorf("level %d out of range 0-255", level)
		}
		return ledValue(int(level), 0, 0, false, false), nil
	case "pulse":
		speed := 255
		if _, ok := ev.Fields["speed"]; ok {
			speed = int(ev.IntField("speed"))
		}
		return ledValue(255, speed, 0, true, true), nil
	}
	return 0, errors.Errorf("unknown command %q", ev.Command())
}

// hasLed is true unless the device is configured without the led
// capability.
func (self *Service) hasLed() bool {
	conf, ok := services.Config.Devices[self.name]
	return !ok || conf.Cap["led"]
}

func (self *Service) command(ev *pubsub.Event) {
	if !self.hasLed() {
		self.log().Warn("device has no led capability, ignoring command", zap.String("command", ev.Command()))
		ledWrites.WithLabelValues("dropped").Inc()
		return
	}
	value, err := ledCommand(ev)
	if err != nil {
		self.log().Warn("ignoring command", zap.Error(err))
		return
	}
	w := self.device()
	if w == nil {
		self.log().Warn("device not open, dropping command", zap.String("command", ev.Command()))
		ledWrites.WithLabelValues("dropped").Inc()
		return
	}
	if err := w.Write(evdev.NewEvent(time.Now(), evdev.EV_MSC, evdev.MSC_PULSELED, value)); err != nil {
		self.log().Error("led write failed", zap.Error(err))
		ledWrites.WithLabelValues("error").Inc()
		return
	}
	ledWrites.WithLabelValues("ok").Inc()
}

func (self *Service) setDevice(w eventWriter) {
	self.mu.Lock()
	self.writer = w
	self.mu.Unlock()
}

func (self *Service) device() eventWriter {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.writer
}

func (self *Service) commands() {
	for ev := range services.Subscriber.Subscribe(pubsub.Exact("command/" + self.name)) {
		self.command(ev)
	}
}

// readDevice opens the device and publishes its events until reading
// fails.
func (self *Service) readDevice(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dev, err := evdev.Open(self.devname)
	if err != nil {
		return err
	}
	defer dev.Close()

	if self.grab {
		if err := dev.Grab(); err != nil {
			return errors.Wrapf(err, "grab %s", self.devname)
		}
		defer dev.Release()
	}
	self.setDevice(dev)
	defer self.setDevice(nil)
	self.log().Info("connected", zap.String("device", self.devname), zap.Int("event_size", evdev.EventSize))

	events, errs := dev.ReadEvents(ctx)
	for ev := range events {
		self.handle(ev)
	}
	return <-errs
}

// failed counts a read failure: a read that did not decode to a whole
// event, or any other device error.
func (self *Service) failed(err error) {
	if errors.Is(err, evdev.ErrShortRead) || errors.Is(err, evdev.ErrShortBuffer) {
		atomic.AddUint64(&self.decodeFailures, 1)
		decodeErrors.Inc()
	} else {
		atomic.AddUint64(&self.deviceFailures, 1)
	}
	self.log().Error("device error", zap.String("device", self.devname), zap.Error(err))
}

// Run the service
func (self *Service) Run() error {
	go self.commands()

	ctx := context.Background()
	for {
		if err := self.readDevice(ctx); err != nil {
			self.failed(err)
		}
		time.Sleep(self.retry)
	}
}
