package session

import (
	"github.com/verte-zerg/boomero/internal/game"
	"github.com/verte-zerg/boomero/internal/turn"
)

// SubscribeState returns a channel that always holds the latest state. The
// current state is delivered immediately; a slow reader only ever sees the
// newest value. cancel closes the channel.
func (s *Store) SubscribeState() (<-chan game.State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan game.State, 1)
	ch <- s.state
	id := s.nextSub
	s.nextSub++
	s.stateSubs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.stateSubs[id]; ok {
			delete(s.stateSubs, id)
			close(sub)
		}
	}
}

// SubscribeDialog is the dialog counterpart of SubscribeState.
func (s *Store) SubscribeDialog() (<-chan turn.Dialog, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan turn.Dialog, 1)
	ch <- s.dialog
	id := s.nextSub
	s.nextSub++
	s.dialogSubs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.dialogSubs[id]; ok {
			delete(s.dialogSubs, id)
			close(sub)
		}
	}
}

// SubscribeMessages returns a channel of transient notices. Nothing is
// replayed, and messages are dropped for a subscriber whose buffer is full.
func (s *Store) SubscribeMessages() (<-chan string, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan string, messageBuffer)
	id := s.nextSub
	s.nextSub++
	s.messageSubs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.messageSubs[id]; ok {
			delete(s.messageSubs, id)
			close(sub)
		}
	}
}

// publishState pushes the current state and dialog. Callers hold s.mu.
func (s *Store) publishState() {
	for _, ch := range s.stateSubs {
		offerLatest(ch, s.state)
	}
	for _, ch := range s.dialogSubs {
		offerLatest(ch, s.dialog)
	}
}

// publishMessages delivers notices. Callers hold s.mu.
func (s *Store) publishMessages(msgs []string) {
	for _, msg := range msgs {
		for _, ch := range s.messageSubs {
			select {
			case ch <- msg:
			default:
			}
		}
	}
}

// offerLatest replaces whatever value is waiting in a one-slot channel.
func offerLatest[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
