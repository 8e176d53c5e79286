package server

import (
	"context"
	"encoding/json"
	"log"
)

// Event type constants prevent typos in event names.
const (
	EventPostCreated   = "post_created"
	EventPostModerated = "post_moderated"
)

// Events take exactly one path to the socket. With a notifier wired, Redis
// pub/sub carries the frame and the pattern subscriber feeds every hub,
// this instance's included, so a direct hub send on top would deliver the
// same frame twice to locally connected clients. The hub is only written
// directly when there is no notifier.

func (s *Server) publishUserEvent(userID uint, eventType string, payload map[string]interface{}) {
	message, ok := encodeEvent(eventType, payload)
	if !ok {
		return
	}
	if s.notifier != nil {
		if err := s.notifier.PublishUser(context.Background(), userID, message); err != nil {
			log.Printf("failed to publish %s event to user %d: %v", eventType, userID, err)
		}
		return
	}
	if s.hub != nil {
		s.hub.Broadcast(userID, message)
	}
}

func (s *Server) publishBroadcastEvent(eventType string, payload map[string]interface{}) {
	message, ok := encodeEvent(eventType, payload)
	if !ok {
		return
	}
	if s.notifier != nil {
		if err := s.notifier.PublishBroadcast(context.Background(), message); err != nil {
			log.Printf("failed to publish %s broadcast event: %v", eventType, err)
		}
		return
	}
	if s.hub != nil {
		s.hub.BroadcastAll(message)
	}
}

func encodeEvent(eventType string, payload map[string]interface{}) (string, bool) {
	eventJSON, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return "", false
	}
	return string(eventJSON), true
}
