package evdev

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// taken from linux/input.h - hardcoded to avoid needing cgo.
const EVIOCGRAB = 0x40044590

type InputDevice struct {
	devname string
	fd      *os.File
}

// Open an evdev device for reading and writing. Devices that refuse write
// access (most keyboards do not, the PowerMate accepts LED events) are
// opened read-only.
func Open(devname string) (*InputDevice, error) {
	fd, err := os.OpenFile(devname, os.O_RDWR, 0)
	if err != nil {
		fd, err = os.Open(devname)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", devname)
	}
	return &InputDevice{devname: devname, fd: fd}, nil
}

func (self *InputDevice) Name() string {
	return self.devname
}

// Grab the device exclusively, so no other consumer sees its events.
func (self *InputDevice) Grab() error {
	return unix.IoctlSetInt(int(self.fd.Fd()), EVIOCGRAB, 1)
}

func (self *InputDevice) Release() error {
	return unix.IoctlSetInt(int(self.fd.Fd()), EVIOCGRAB, 0)
}

// ReadOne blocks until a single event is read.
func (self *InputDevice) ReadOne() (*InputEvent, error) {
	buffer := make([]byte, EventSize)
	n, err := self.fd.Read(buffer)
	if err != nil {
		return nil, err
	}
	if n != EventSize {
		return nil, errors.Wrapf(ErrShortRead, "%s: read %d bytes", self.devname, n)
	}
	ev, err := Decode(buffer)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// ReadEvents reads events until ctx is cancelled or the device fails. The
// error channel receives at most one error; both channels are closed when
// reading stops. io.EOF is not reported as an error.
func (self *InputDevice) ReadEvents(ctx context.Context) (<-chan InputEvent, <-chan error) {
	events := make(chan InputEvent, 16)
	errs := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(errs)
		defer close(events)
		for {
			ev, err := self.ReadOne()
			if err != nil {
				if err != io.EOF && ctx.Err() == nil {
					errs <- err
				}
				return
			}
			select {
			case events <- *ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			// unblock the reader
			self.fd.SetReadDeadline(time.Now())
		case <-done:
		}
	}()
	return events, errs
}

// Write an event to the device, eg. an EV_MSC/MSC_PULSELED to set the
// PowerMate's LED.
func (self *InputDevice) Write(ev InputEvent) error {
	n, err := self.fd.Write(ev.Encode())
	if err != nil {
		return errors.Wrapf(err, "write %s", self.devname)
	}
	if n != EventSize {
		return errors.Errorf("write %s: short write of %d bytes", self.devname, n)
	}
	return nil
}

func (self *InputDevice) Close() error {
	return self.fd.Close()
}
