// Package dedupe tracks how many times each secret value has been reported
// per origin, so repeated findings across scans get suppressed once they
// cross the configured threshold.
package dedupe

import "sync"

// Store counts accepted (origin, value) pairs. It is an explicitly
// constructed dependency shared by all concurrent scans; one lock covers the
// check-and-increment so two racing scans cannot both slip past the
// threshold.
type Store struct {
	mu     sync.Mutex
	counts map[string]map[string]int
}

// NewStore returns an empty counter store.
func NewStore() *Store {
	return &Store{counts: map[string]map[string]int{}}
}

// CurrentCount returns how many times value has been accepted at origin.
func (s *Store) CurrentCount(origin string, value string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[origin][value]
}

// TryAccept atomically checks the counter against threshold and increments it
// on acceptance. Returns false when the value already hit the threshold at
// this origin.
func (s *Store) TryAccept(origin string, value string, threshold int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.counts[origin][value] >= threshold {
		return false
	}

	perOrigin, ok := s.counts[origin]
	if !ok {
		perOrigin = map[string]int{}
		s.counts[origin] = perOrigin
	}
	perOrigin[value]++
	return true
}

// MergeExternalCount reconciles a count recovered from an external record,
// keeping the larger of the internal and external values.
func (s *Store) MergeExternalCount(origin string, value string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	perOrigin, ok := s.counts[origin]
	if !ok {
		perOrigin = map[string]int{}
		s.counts[origin] = perOrigin
	}
	if count > perOrigin[value] {
		perOrigin[value] = count
	}
}

// Reset clears all counters for all origins.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = map[string]map[string]int{}
}

// Export returns a deep copy of the counter state for persistence by the
// host. The store itself never touches disk.
func (s *Store) Export() map[string]map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]map[string]int, len(s.counts))
	for origin, perOrigin := range s.counts {
		copied := make(map[string]int, len(perOrigin))
		for value, count := range perOrigin {
			copied[value] = count
		}
		out[origin] = copied
	}
	return out
}

// Import merges previously exported counters back in, entry by entry, taking
// the maximum where both sides have a count.
func (s *Store) Import(counts map[string]map[string]int) {
	for origin, perOrigin := range counts {
		for value, count := range perOrigin {
			s.MergeExternalCount(origin, value, count)
		}
	}
}
