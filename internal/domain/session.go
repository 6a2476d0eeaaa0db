package domain

import "fmt"

// Session tracks where the user is in the interview.
type Session struct {
	CurrentStep int  `json:"currentStep"`
	TotalSteps  int  `json:"totalSteps"`
	Finished    bool `json:"finished"`
}

// NewSession validates the backend's starting position.
func NewSession(step int, total int) (*Session, error) {
	if step < 1 || total < 1 {
		return nil, fmt.Errorf("%w: invalid start position %d of %d", ErrProtocol, step, total)
	}
	if step > total {
		return nil, fmt.Errorf("%w: start step %d exceeds total %d", ErrProtocol, step, total)
	}
	return &Session{CurrentStep: step, TotalSteps: total}, nil
}

// Progress is (CurrentStep-1)/TotalSteps until the interview is finished, then 1.
func (s *Session) Progress() float64 {
	if s == nil || s.TotalSteps <= 0 {
		return 0
	}
	if s.Finished {
		return 1
	}
	return float64(s.CurrentStep-1) / float64(s.TotalSteps)
}

// ValidateNext checks that next moves strictly forward and stays within the interview.
func (s *Session) ValidateNext(next int) error {
	if next <= s.CurrentStep {
		return fmt.Errorf("%w: next step %d does not follow step %d", ErrProtocol, next, s.CurrentStep)
	}
	if next > s.TotalSteps {
		return fmt.Errorf("%w: next step %d exceeds total %d", ErrProtocol, next, s.TotalSteps)
	}
	return nil
}

// Advance moves to a step previously accepted by ValidateNext.
func (s *Session) Advance(next int) {
	s.CurrentStep = next
}

// Clone returns an independent copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
