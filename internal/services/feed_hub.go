package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/nexcodes/softec-25-sub000/internal/metrics"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Live feed event types
const (
	EventCommentAdded   = "comment_added"
	EventVoteStats      = "vote_stats"
	EventCrimeModerated = "crime_moderated"
)

const feedWriteTimeout = 10 * time.Second

// FeedEvent is one message on a crime's live feed
type FeedEvent struct {
	Type      string      `json:"type"`
	CrimeID   string      `json:"crime_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// FeedConn is the writing half of a websocket connection. *websocket.Conn satisfies it.
type FeedConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type subscriber struct {
	mu   sync.Mutex
	conn FeedConn
}

func (s *subscriber) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// FeedHub fans crime events out to the websocket subscribers of each crime
type FeedHub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

// NewFeedHub creates a new feed hub
func NewFeedHub() *FeedHub {
	return &FeedHub{
		subs: make(map[string]map[*subscriber]struct{}),
	}
}

// Subscribe registers conn for the events of crimeID. The returned function
// removes and closes it and is safe to call more than once.
func (h *FeedHub) Subscribe(crimeID string, conn FeedConn) func() {
	sub := &subscriber{conn: conn}

	h.mu.Lock()
	if h.subs[crimeID] == nil {
		h.subs[crimeID] = make(map[*subscriber]struct{})
	}
	h.subs[crimeID][sub] = struct{}{}
	h.mu.Unlock()

	metrics.FeedSubscribers.Inc()
	log.Debug().Str("crime_id", crimeID).Msg("Feed subscriber registered")

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(crimeID, sub) })
	}
}

func (h *FeedHub) remove(crimeID string, sub *subscriber) {
	h.mu.Lock()
	set, ok := h.subs[crimeID]
	if ok {
		if _, ok = set[sub]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, crimeID)
			}
		}
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	sub.conn.Close()
	metrics.FeedSubscribers.Dec()
	log.Debug().Str("crime_id", crimeID).Msg("Feed subscriber unregistered")
}

// Publish sends an event to every subscriber of crimeID. Subscribers that
// fail to receive it are dropped.
func (h *FeedHub) Publish(crimeID, eventType string, data interface{}) {
	h.mu.RLock()
	targets := make([]*subscriber, 0, len(h.subs[crimeID]))
	for sub := range h.subs[crimeID] {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	msg, err := json.Marshal(FeedEvent{
		Type:      eventType,
		CrimeID:   crimeID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	})
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to marshal feed event")
		return
	}

	for _, sub := range targets {
		if err := sub.write(msg); err != nil {
			log.Warn().Err(err).Str("crime_id", crimeID).Msg("Failed to deliver feed event")
			h.remove(crimeID, sub)
		}
	}
}

// Subscribers counts the open subscriptions of crimeID
func (h *FeedHub) Subscribers(crimeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[crimeID])
}

// Close drops every subscriber
func (h *FeedHub) Close() {
	h.mu.Lock()
	all := h.subs
	h.subs = make(map[string]map[*subscriber]struct{})
	h.mu.Unlock()

	for _, set := range all {
		for sub := range set {
			sub.conn.Close()
			metrics.FeedSubscribers.Dec()
		}
	}
}
