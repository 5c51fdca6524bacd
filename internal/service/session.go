package service

import (
	"sync"

	"github.com/payhub-ua/payoutbot/internal/domain"
)

// SessionStore keeps at most one payout session per operator, in memory
// only. Sessions do not survive a restart.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*domain.Session
	locks    map[int64]*sync.Mutex
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*domain.Session),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// LockOperator serializes event handling for one operator. The bot
// dispatches updates concurrently, and processor calls run while the
// lock is held, so two button presses can never mutate the same session
// at once. The returned func releases the lock.
func (s *SessionStore) LockOperator(operatorID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[operatorID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[operatorID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *SessionStore) Get(operatorID int64) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[operatorID]
}

func (s *SessionStore) Put(sess *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.OperatorID] = sess
}

func (s *SessionStore) Delete(operatorID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, operatorID)
}
