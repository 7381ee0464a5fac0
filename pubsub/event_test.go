package pubsub

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ExampleEvent_String() {
	ev := NewEvent("test", nil)
	ev.Timestamp = time.Date(2014, 1, 2, 3, 4, 5, 987654321, time.UTC)
	fmt.Println(ev.String())
	//Output: {"timestamp":"2014-01-02 03:04:05.987654","topic":"test"}
}

func ExampleParse() {
	ev := Parse(`{"timestamp":"2014-01-02 03:04:05.987000","topic":"test","field":"value"}`, "")
	fmt.Println(ev.Topic)
	fmt.Println(ev.Timestamp)
	fmt.Println(ev.Fields)
	// Output:
	// test
	// 2014-01-02 03:04:05.987 +0000 UTC
	// map[field:value]
}

func TestParseTopicFallback(t *testing.T) {
	ev := Parse(`{"command":"rotate"}`, "powermate")
	assert.Equal(t, "powermate", ev.Topic)
	assert.Equal(t, "rotate", ev.Command())

	assert.Nil(t, Parse(`{"command":"rotate"}`, ""))
	assert.Nil(t, Parse(`{`, "powermate"))
}

func TestIntField(t *testing.T) {
	ev := NewEvent("powermate", Fields{"a": 1, "b": int32(-1), "c": float64(24), "d": "x"})
	assert.Equal(t, int64(1), ev.IntField("a"))
	assert.Equal(t, int64(-1), ev.IntField("b"))
	assert.Equal(t, int64(24), ev.IntField("c"))
	assert.Equal(t, int64(0), ev.IntField("d"))
	assert.Equal(t, int64(0), ev.IntField("missing"))
}

func TestNewCommand(t *testing.T) {
	ev := NewCommand("dial.study", "on")
	assert.Equal(t, "command/dial.study", ev.Topic)
	assert.Equal(t, "dial.study", ev.Device())
	assert.Equal(t, "on", ev.Command())
}

func TestMatchers(t *testing.T) {
	assert.True(t, Prefix("command").Match("command"))
	assert.True(t, Prefix("command").Match("command/dial.study"))
	assert.False(t, Prefix("command").Match("commander"))
	assert.True(t, Exact("query").Match("query"))
	assert.False(t, Exact("query").Match("query/x"))
	assert.True(t, All().Match("anything"))
}
