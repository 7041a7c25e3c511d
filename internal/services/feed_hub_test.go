package services

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	failNext bool
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failNext {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) events(t *testing.T) []FeedEvent {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]FeedEvent, 0, len(c.messages))
	for _, m := range c.messages {
		var ev FeedEvent
		require.NoError(t, json.Unmarshal(m, &ev))
		out = append(out, ev)
	}
	return out
}

func TestFeedHub_PublishReachesOnlyThatCrime(t *testing.T) {
	hub := NewFeedHub()
	a, b, other := &fakeConn{}, &fakeConn{}, &fakeConn{}

	unsubA := hub.Subscribe("crime-1", a)
	defer unsubA()
	unsubB := hub.Subscribe("crime-1", b)
	defer unsubB()
	unsubOther := hub.Subscribe("crime-2", other)
	defer unsubOther()

	assert.Equal(t, 2, hub.Subscribers("crime-1"))

	hub.Publish("crime-1", EventVoteStats, map[string]int{"total": 1})

	for _, conn := range []*fakeConn{a, b} {
		events := conn.events(t)
		require.Len(t, events, 1)
		assert.Equal(t, EventVoteStats, events[0].Type)
		assert.Equal(t, "crime-1", events[0].CrimeID)
		assert.NotZero(t, events[0].Timestamp)
	}
	assert.Empty(t, other.events(t))
}

func TestFeedHub_UnsubscribeClosesOnce(t *testing.T) {
	hub := NewFeedHub()
	conn := &fakeConn{}

	unsubscribe := hub.Subscribe("crime-1", conn)
	unsubscribe()
	unsubscribe()

	assert.True(t, conn.closed)
	assert.Equal(t, 0, hub.Subscribers("crime-1"))

	hub.Publish("crime-1", EventCommentAdded, nil)
	assert.Empty(t, conn.events(t))
}

func TestFeedHub_DropsFailingSubscribers(t *testing.T) {
	hub := NewFeedHub()
	healthy := &fakeConn{}
	broken := &fakeConn{failNext: true}

	defer hub.Subscribe("crime-1", healthy)()
	defer hub.Subscribe("crime-1", broken)()

	hub.Publish("crime-1", EventCrimeModerated, nil)

	assert.True(t, broken.closed)
	assert.Equal(t, 1, hub.Subscribers("crime-1"))
	assert.Len(t, healthy.events(t), 1)
}

func TestFeedHub_Close(t *testing.T) {
	hub := NewFeedHub()
	a, b := &fakeConn{}, &fakeConn{}
	hub.Subscribe("crime-1", a)
	hub.Subscribe("crime-2", b)

	hub.Close()

	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Equal(t, 0, hub.Subscribers("crime-1"))
	assert.Equal(t, 0, hub.Subscribers("crime-2"))
}
