package notifier

import (
	"sync"

	"github.com/meeplemeet/meeplemeet/internal/stats"
	"github.com/meeplemeet/meeplemeet/internal/tracker"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendMeetingNotificationFunc func(meeting tracker.Meeting, dryRun bool) error
	SendResultNotificationFunc  func(record tracker.GameRecord, dryRun bool) error
	SendLeaderboardFunc         func(winners []stats.WinnerRow, dryRun bool) error

	FormatLeaderboardResponseFunc func(winners []stats.WinnerRow) (any, error)

	// Call records
	SendMeetingNotificationCalls []tracker.Meeting
	SendResultNotificationCalls  []tracker.GameRecord
	SendLeaderboardCalls         [][]stats.WinnerRow
	LastLeaderboardResponse      any
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMeetingNotificationCalls = nil
	m.SendResultNotificationCalls = nil
	m.SendLeaderboardCalls = nil
	m.LastLeaderboardResponse = nil
}

func (m *Mock) SendMeetingNotification(meeting tracker.Meeting, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMeetingNotificationCalls = append(m.SendMeetingNotificationCalls, meeting)
	if m.SendMeetingNotificationFunc != nil {
		return m.SendMeetingNotificationFunc(meeting, dryRun)
	}
	return nil
}

func (m *Mock) SendResultNotification(record tracker.GameRecord, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, record)
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(record, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(winners []stats.WinnerRow, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, winners)
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(winners, dryRun)
	}
	return nil
}

func (m *Mock) FormatLeaderboardResponse(winners []stats.WinnerRow) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(winners)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_leaderboard", nil
}
