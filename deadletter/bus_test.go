package deadletter

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.ambercrest.dev/cellsupervise/actor"
)

func TestBusPublishIsObservableViaSubscribe(t *testing.T) {
	bus := New()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := bus.Subscribe(ctx, actor.DeadLetterTopic)
	require.NoError(t, err)

	recipient := actor.NewCell(1, actor.URI{Name: "lost", Path: "/user/lost"}, nil, nil, nil, nil)
	bus.Publish(actor.DeadLetterTopic, actor.DeadLetter{
		Msg:       `"undeliverable"`,
		Recipient: recipient,
	})

	select {
	case wm := <-msgs:
		wm.Ack()
		var decoded wireDeadLetter
		require.NoError(t, json.Unmarshal(wm.Payload, &decoded))
		require.Equal(t, `"undeliverable"`, decoded.Msg)
		require.Equal(t, "/user/lost", decoded.Recipient)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dead letter")
	}
}
