package metrics

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	InterviewsStarted   int64     `json:"interviewsStarted"`
	InterviewsCompleted int64     `json:"interviewsCompleted"`
	AnswersSubmitted    int64     `json:"answersSubmitted"`
	UploadFailures      int64     `json:"uploadFailures"`
	MicFailures         int64     `json:"micFailures"`
	Retries             int64     `json:"retries"`
	LoadFailures        int64     `json:"loadFailures"`
	APICallsTotal       int64     `json:"apiCallsTotal"`
	APICallsSuccessful  int64     `json:"apiCallsSuccessful"`
	LastUpdateTime      time.Time `json:"lastUpdateTime"`
}

// Metrics counts interview activity for the current process. A nil *Metrics ignores updates.
type Metrics struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewMetrics() *Metrics {
	return &Metrics{snap: Snapshot{LastUpdateTime: time.Now()}}
}

func (m *Metrics) IncrementInterviewsStarted() {
	m.update(func(s *Snapshot) { s.InterviewsStarted++ })
}

func (m *Metrics) IncrementInterviewsCompleted() {
	m.update(func(s *Snapshot) { s.InterviewsCompleted++ })
}

func (m *Metrics) IncrementAnswersSubmitted() {
	m.update(func(s *Snapshot) { s.AnswersSubmitted++ })
}

func (m *Metrics) IncrementUploadFailures() {
	m.update(func(s *Snapshot) { s.UploadFailures++ })
}

func (m *Metrics) IncrementMicFailures() {
	m.update(func(s *Snapshot) { s.MicFailures++ })
}

func (m *Metrics) IncrementRetries() {
	m.update(func(s *Snapshot) { s.Retries++ })
}

func (m *Metrics) IncrementLoadFailures() {
	m.update(func(s *Snapshot) { s.LoadFailures++ })
}

func (m *Metrics) IncrementAPICall(success bool) {
	m.update(func(s *Snapshot) {
		s.APICallsTotal++
		if success {
			s.APICallsSuccessful++
		}
	})
}

func (m *Metrics) GetSnapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

func (m *Metrics) update(fn func(*Snapshot)) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.snap)
	m.snap.LastUpdateTime = time.Now()
}
