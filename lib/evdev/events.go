package evdev

import (
	"encoding/binary"
	"fmt"
	"structs"
	"time"
	"unsafe"

	"github.com/pkg/errors"
)

// Event types, from linux/input-event-codes.h.
const (
	EV_SYN uint16 = 0x00
	EV_KEY uint16 = 0x01
	EV_REL uint16 = 0x02
	EV_MSC uint16 = 0x04
)

// Event codes the PowerMate emits or accepts.
const (
	SYN_REPORT   uint16 = 0x00
	REL_DIAL     uint16 = 0x07
	BTN_0        uint16 = 0x100
	MSC_PULSELED uint16 = 0x01
)

// InputEvent mirrors struct input_event from linux/input.h on 64-bit
// targets. Field order and widths must not change.
type InputEvent struct {
	_            structs.HostLayout
	Seconds      int64  // time in seconds since epoch at which event occurred
	Microseconds int64  // microseconds part of the timestamp
	Type         uint16 // event type - one of EV_*
	Code         uint16 // event code related to the event type
	Value        int32  // event value related to the event type
}

// EventSize is the in-memory size of InputEvent, as laid out by the
// platform. A read from an evdev device returns a multiple of it.
const EventSize = int(unsafe.Sizeof(InputEvent{}))

var (
	offSeconds      = int(unsafe.Offsetof(InputEvent{}.Seconds))
	offMicroseconds = int(unsafe.Offsetof(InputEvent{}.Microseconds))
	offType         = int(unsafe.Offsetof(InputEvent{}.Type))
	offCode         = int(unsafe.Offsetof(InputEvent{}.Code))
	offValue        = int(unsafe.Offsetof(InputEvent{}.Value))
)

var (
	ErrShortBuffer   = errors.New("evdev: buffer shorter than one event")
	ErrTrailingBytes = errors.New("evdev: buffer is not a whole number of events")
	ErrShortRead     = errors.New("evdev: short read from device")
)

// NewEvent creates an event stamped with t.
func NewEvent(t time.Time, typ, code uint16, value int32) InputEvent {
	return InputEvent{
		Seconds:      t.Unix(),
		Microseconds: int64(t.Nanosecond() / 1000),
		Type:         typ,
		Code:         code,
		Value:        value,
	}
}

// Timestamp of the event.
func (ev InputEvent) Timestamp() time.Time {
	return time.Unix(ev.Seconds, ev.Microseconds*1000)
}

func (ev InputEvent) String() string {
	return fmt.Sprintf("type=0x%02x code=0x%02x value=%d", ev.Type, ev.Code, ev.Value)
}

// Decode reads one event from the start of buf, in host byte order.
func Decode(buf []byte) (InputEvent, error) {
	var ev InputEvent
	if len(buf) < EventSize {
		return ev, errors.Wrapf(ErrShortBuffer, "got %d bytes, want %d", len(buf), EventSize)
	}
	order := binary.NativeEndian
	ev.Seconds = int64(order.Uint64(buf[offSeconds:]))
	ev.Microseconds = int64(order.Uint64(buf[offMicroseconds:]))
	ev.Type = order.Uint16(buf[offType:])
	ev.Code = order.Uint16(buf[offCode:])
	ev.Value = int32(order.Uint32(buf[offValue:]))
	return ev, nil
}

// DecodeAll decodes every whole event in buf. If buf has a partial event at
// the end, the events before it are returned with ErrTrailingBytes.
func DecodeAll(buf []byte) ([]InputEvent, error) {
	n := len(buf) / EventSize
	events := make([]InputEvent, 0, n)
	for i := 0; i < n; i++ {
		ev, err := Decode(buf[i*EventSize:])
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	if rem := len(buf) % EventSize; rem != 0 {
		return events, errors.Wrapf(ErrTrailingBytes, "%d trailing bytes", rem)
	}
	return events, nil
}

// Encode returns the event as EventSize bytes in host byte order. Padding,
// if the platform has any, is zeroed.
func (ev InputEvent) Encode() []byte {
	buf := make([]byte, EventSize)
	order := binary.NativeEndian
	order.PutUint64(buf[offSeconds:], uint64(ev.Seconds))
	order.PutUint64(buf[offMicroseconds:], uint64(ev.Microseconds))
	order.PutUint16(buf[offType:], ev.Type)
	order.PutUint16(buf[offCode:], ev.Code)
	order.PutUint32(buf[offValue:], uint32(ev.Value))
	return buf
}
