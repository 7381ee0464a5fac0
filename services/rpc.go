package services

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/barnybug/powermate/pubsub"
	"github.com/pkg/errors"
)

var ErrTimeout = errors.New("timeout")

// QueryChannel sends `query` and streams answers until `timeout`.
func QueryChannel(query string, timeout time.Duration) <-chan *pubsub.Event {
	reply_to := fmt.Sprintf("_rpc.%d", rand.Int())
	ch := Subscriber.Subscribe(pubsub.Exact(reply_to))

	SendQuery(query, "rpc", "", reply_to)

	// close the listener after timeout
	go func() {
		time.Sleep(timeout)
		Subscriber.Close(ch)
	}()

	return ch
}

// RPC returns the first answer, or ErrTimeout if none arrive in time.
func RPC(query string, timeout time.Duration) (*pubsub.Event, error) {
	ch := QueryChannel(query, timeout)
	for ev := range ch {
		// discard later answers so the subscriber never blocks on ch
		go func() {
			for range ch {
			}
		}()
		Subscriber.Close(ch)
		return ev, nil
	}
	return nil, errors.Wrap(ErrTimeout, query)
}
