package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveEvent(t *testing.T, ch <-chan []byte) Event {
	t.Helper()
	select {
	case msg := <-ch:
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBrokerFanout(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	_, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()
	assert.Equal(t, 2, b.SubscriberCount())

	b.Publish(map[string]any{"id": 7})

	for _, ch := range []<-chan []byte{ch1, ch2} {
		ev := receiveEvent(t, ch)
		assert.Equal(t, "post_update", ev.Type)
		data, ok := ev.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(7), data["id"])
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	id, ch := b.Subscribe()
	b.Unsubscribe(id)
	assert.Equal(t, 0, b.SubscriberCount())

	_, open := <-ch
	assert.False(t, open, "channel should be closed after unsubscribe")

	// A second unsubscribe is a no-op.
	b.Unsubscribe(id)
}

func TestBrokerSlowSubscriberDropsOldest(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	_, ch := b.Subscribe()

	// Overfill the buffer without reading.
	total := clientBufferSize + 10
	for i := 0; i < total; i++ {
		b.Publish(map[string]any{"seq": i})
	}

	// Drain until the final event shows up. Earlier events were evicted to
	// make room, so the read side sees a strictly increasing suffix.
	var seqs []int
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case msg := <-ch:
			var ev Event
			require.NoError(t, json.Unmarshal(msg, &ev))
			data := ev.Data.(map[string]any)
			seqs = append(seqs, int(data["seq"].(float64)))
		default:
			time.Sleep(5 * time.Millisecond)
		}
		if len(seqs) > 0 && seqs[len(seqs)-1] == total-1 {
			break
		}
	}

	require.NotEmpty(t, seqs)
	assert.Equal(t, total-1, seqs[len(seqs)-1])
	for i := 1; i < len(seqs); i++ {
		assert.Greater(t, seqs[i], seqs[i-1])
	}
}

func TestBrokerClose(t *testing.T) {
	b := NewBroker()

	_, ch := b.Subscribe()
	b.Close()

	_, open := <-ch
	assert.False(t, open, "channel should be closed after broker close")
	assert.Equal(t, 0, b.SubscriberCount())

	// Publishing after close must not panic or block.
	b.Publish(map[string]any{"id": 1})
	b.Close()
}
