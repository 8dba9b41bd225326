package http

import (
	"log/slog"
	"sync"
)

// allDiagrams is the topic of subscribers that follow every diagram.
const allDiagrams = "*"

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // Diagram ID -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for diagramID, or for every diagram when
// diagramID is empty. The returned func unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(diagramID string) (chan string, func()) {
	if diagramID == "" {
		diagramID = allDiagrams
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[diagramID]; !ok {
		sm.subscribers[diagramID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[diagramID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[diagramID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, diagramID)
			}
		}
	}
}

// Broadcast sends msg to the subscribers of diagramID and to those following
// every diagram. Slow clients miss messages rather than block the sender.
func (sm *StreamManager) Broadcast(diagramID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.logger.Debug("StreamManager: Broadcasting", "diagram", diagramID, "payload_size", len(msg))

	for _, topic := range []string{diagramID, allDiagrams} {
		for ch := range sm.subscribers[topic] {
			select {
			case ch <- msg:
			default:
				sm.logger.Warn("SSE: Client buffer full, dropping message", "diagram", diagramID)
			}
		}
	}
}
