package metrics

import "sync"

// Mock is a no-op Metrics implementation that records call counts for
// assertions in tests. It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	RecordsCreatedCalls     int
	ClaimsProcessedCalls    int
	ResultsClaimedTotal     float64
	StatsRequestsCalls      int
	ProcessingObservations  []float64
	SlackNotifSentCalls     int
	SlackNotifFailedCalls   int
	StartupTimeObservations []float64
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) IncRecordsCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordsCreatedCalls++
}

func (m *Mock) IncClaimsProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClaimsProcessedCalls++
}

func (m *Mock) AddResultsClaimed(count float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResultsClaimedTotal += count
}

func (m *Mock) IncStatsRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatsRequestsCalls++
}

func (m *Mock) ObserveProcessingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProcessingObservations = append(m.ProcessingObservations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackNotifSentCalls++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackNotifFailedCalls++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTimeObservations = append(m.StartupTimeObservations, duration)
}
