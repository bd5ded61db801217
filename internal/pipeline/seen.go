package pipeline

import "sync"

// seenSet remembers which dedup keys a watch has already written.
type seenSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newSeenSet() *seenSet {
	return &seenSet{keys: make(map[string]struct{})}
}

func (s *seenSet) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}

func (s *seenSet) add(key string) {
	s.mu.Lock()
	s.keys[key] = struct{}{}
	s.mu.Unlock()
}

func (s *seenSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
