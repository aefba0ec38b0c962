package serverenroll

import (
	"sync"

	"golang.org/x/time/rate"
)

// registration bursts come from frantic refresh spamming when a popular
// section opens, one limiter per student keeps that fair
type studentLimiters struct {
	limiters map[int64]*rate.Limiter
	mu       sync.Mutex
}

func newStudentLimiters() *studentLimiters {
	return &studentLimiters{
		limiters: map[int64]*rate.Limiter{},
	}
}

func (s *studentLimiters) allow(studentID int64) bool {
	s.mu.Lock()
	limiter, ok := s.limiters[studentID]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(2), 5)
		s.limiters[studentID] = limiter
	}
	s.mu.Unlock()
	return limiter.Allow()
}
