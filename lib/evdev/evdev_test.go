package evdev

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"testing"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	// hard to test this without grabbing a real input device,
	// so just basic test of functions and error handling.
	dev, err := Open("/dev/null")
	require.NoError(t, err)
	assert.Equal(t, "/dev/null", dev.Name())

	err = dev.Grab()
	assert.Equal(t, "inappropriate ioctl for device", fmt.Sprint(err))

	_, err = dev.ReadOne()
	assert.Equal(t, io.EOF, err)

	assert.NoError(t, dev.Write(NewEvent(time.Now(), EV_MSC, MSC_PULSELED, 255)))
	assert.NoError(t, dev.Close())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open("/dev/input/does-not-exist")
	assert.Error(t, err)
}

func TestReadEventsEOF(t *testing.T) {
	dev, err := Open("/dev/null")
	require.NoError(t, err)
	defer dev.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, errs := dev.ReadEvents(ctx)
	_, ok := <-events
	assert.False(t, ok, "events closed on EOF")
	_, ok = <-errs
	assert.False(t, ok, "EOF is not an error")
}

func TestReadEventsNoLeak(t *testing.T) {
	before := runtime.NumGoroutine()
	for i := 0; i < 50; i++ {
		dev, err := Open("/dev/null")
		require.NoError(t, err)
		events, errs := dev.ReadEvents(context.Background())
		for range events {
		}
		<-errs
		dev.Close()
	}
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, time.Second, 10*time.Millisecond, "reader goroutines exit with the reader")
}

func TestEventSizeMatchesLayout(t *testing.T) {
	var ev InputEvent
	assert.Equal(t, int(unsafe.Sizeof(ev)), EventSize)
	assert.Equal(t, 0, offSeconds)
	assert.Equal(t, 8, offMicroseconds)
	assert.True(t, offType >= offMicroseconds+8)
	assert.True(t, offCode >= offType+2)
	assert.True(t, offValue >= offCode+2)
	assert.True(t, EventSize >= offValue+4)
	// trailing padding rounds up to the record's alignment
	assert.Zero(t, EventSize%int(unsafe.Alignof(ev)))
}

func TestDecodeRoundTrip(t *testing.T) {
	ts := time.Date(2014, 1, 2, 3, 4, 5, 987654000, time.UTC)
	ev := NewEvent(ts, EV_REL, REL_DIAL, -1)
	buf := ev.Encode()
	require.Len(t, buf, EventSize)

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, ev, got)
	assert.Equal(t, int32(-1), got.Value)
	assert.True(t, ts.Equal(got.Timestamp()))
}

func TestDecodeShortBuffer(t *testing.T) {
	_, err := Decode(make([]byte, EventSize-1))
	assert.True(t, errors.Is(err, ErrShortBuffer))
	assert.Equal(t, ErrShortBuffer, errors.Cause(err))

	_, err = Decode(nil)
	assert.True(t, errors.Is(err, ErrShortBuffer))
}

func TestDecodeAll(t *testing.T) {
	now := time.Now()
	var buf []byte
	buf = append(buf, NewEvent(now, EV_KEY, BTN_0, 1).Encode()...)
	buf = append(buf, NewEvent(now, EV_SYN, SYN_REPORT, 0).Encode()...)

	events, err := DecodeAll(buf)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EV_KEY, events[0].Type)
	assert.Equal(t, BTN_0, events[0].Code)
	assert.Equal(t, EV_SYN, events[1].Type)

	events, err = DecodeAll(append(buf, 1, 2, 3))
	assert.True(t, errors.Is(err, ErrTrailingBytes))
	assert.Len(t, events, 2)

	events, err = DecodeAll(nil)
	assert.NoError(t, err)
	assert.Empty(t, events)
}

func ExampleInputEvent_String() {
	ev := InputEvent{Type: EV_REL, Code: REL_DIAL, Value: 1}
	fmt.Println(ev)
	// Output:
	// type=0x02 code=0x07 value=1
}
