package tracker

import "sync"

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreatePlayerFunc  func(form PlayerForm) (Player, error)
	GetPlayerFunc     func(id int64) (Player, error)
	UpdatePlayerFunc  func(id int64, form PlayerForm) (Player, error)
	DeletePlayerFunc  func(id int64) error
	ListPlayersFunc   func() ([]Player, error)
	PlayerExistsFunc  func(id int64) (bool, error)
	PlayerHistoryFunc func(playerID int64) ([]HistoryEntry, error)

	CreateGameFunc func(form GameForm) (Game, error)
	GetGameFunc    func(id int64) (Game, error)
	UpdateGameFunc func(id int64, form GameForm) (Game, error)
	ListGamesFunc  func() ([]Game, error)

	CreateMeetingFunc     func(form MeetingForm) (Meeting, error)
	GetMeetingFunc        func(id int64) (MeetingDetail, error)
	UpdateMeetingFunc     func(id int64, form MeetingForm) (Meeting, error)
	DeleteMeetingFunc     func(id int64) error
	ListMeetingsFunc      func() ([]Meeting, error)
	UpsertParticipantFunc func(meetingID int64, form ParticipantForm) (Participant, error)

	CreateGameRecordFunc       func(rec NewGameRecord) (GameRecord, error)
	GetGameRecordFunc          func(id int64) (GameRecord, error)
	ListMeetingRecordsFunc     func(meetingID int64) ([]GameRecord, error)
	RecordsForProcessingFunc   func() ([]GameRecord, error)
	UpdateProcessingStatusFunc func(recordID int64, status ProcessingStatus) error

	UnregisteredResultsFunc func(name string) ([]GameResult, error)
	ClaimResultsFunc        func(playerID int64, resultIDs []int64) (int64, error)

	ResultRowsFunc     func() ([]ResultRow, error)
	AttendanceRowsFunc func() ([]AttendanceRow, error)
	PlayerRefsFunc     func() ([]PlayerRef, error)
	GameRefsFunc       func() ([]GameRef, error)

	ClearFunc func()

	// Call records
	CreateGameRecordCalls       []NewGameRecord
	UpdateProcessingStatusCalls []struct {
		RecordID int64
		Status   ProcessingStatus
	}
	ClaimResultsCalls []struct {
		PlayerID  int64
		ResultIDs []int64
	}
	UnregisteredResultsCalls []string
}

var _ Store = (*MockStore)(nil)

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateGameRecordCalls = nil
	m.UpdateProcessingStatusCalls = nil
	m.ClaimResultsCalls = nil
	m.UnregisteredResultsCalls = nil
}

func (m *MockStore) CreatePlayer(form PlayerForm) (Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreatePlayerFunc != nil {
		return m.CreatePlayerFunc(form)
	}
	return Player{}, nil
}

func (m *MockStore) GetPlayer(id int64) (Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(id)
	}
	return Player{}, nil
}

func (m *MockStore) UpdatePlayer(id int64, form PlayerForm) (Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdatePlayerFunc != nil {
		return m.UpdatePlayerFunc(id, form)
	}
	return Player{}, nil
}

func (m *MockStore) DeletePlayer(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeletePlayerFunc != nil {
		return m.DeletePlayerFunc(id)
	}
	return nil
}

func (m *MockStore) ListPlayers() ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListPlayersFunc != nil {
		return m.ListPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) PlayerExists(id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PlayerExistsFunc != nil {
		return m.PlayerExistsFunc(id)
	}
	return false, nil
}

func (m *MockStore) PlayerHistory(playerID int64) ([]HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PlayerHistoryFunc != nil {
		return m.PlayerHistoryFunc(playerID)
	}
	return nil, nil
}

func (m *MockStore) CreateGame(form GameForm) (Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateGameFunc != nil {
		return m.CreateGameFunc(form)
	}
	return Game{}, nil
}

func (m *MockStore) GetGame(id int64) (Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetGameFunc != nil {
		return m.GetGameFunc(id)
	}
	return Game{}, nil
}

func (m *MockStore) UpdateGame(id int64, form GameForm) (Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateGameFunc != nil {
		return m.UpdateGameFunc(id, form)
	}
	return Game{}, nil
}

func (m *MockStore) ListGames() ([]Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListGamesFunc != nil {
		return m.ListGamesFunc()
	}
	return nil, nil
}

func (m *MockStore) CreateMeeting(form MeetingForm) (Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateMeetingFunc != nil {
		return m.CreateMeetingFunc(form)
	}
	return Meeting{}, nil
}

func (m *MockStore) GetMeeting(id int64) (MeetingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMeetingFunc != nil {
		return m.GetMeetingFunc(id)
	}
	return MeetingDetail{}, nil
}

func (m *MockStore) UpdateMeeting(id int64, form MeetingForm) (Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateMeetingFunc != nil {
		return m.UpdateMeetingFunc(id, form)
	}
	return Meeting{}, nil
}

func (m *MockStore) DeleteMeeting(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteMeetingFunc != nil {
		return m.DeleteMeetingFunc(id)
	}
	return nil
}

func (m *MockStore) ListMeetings() ([]Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListMeetingsFunc != nil {
		return m.ListMeetingsFunc()
	}
	return nil, nil
}

func (m *MockStore) UpsertParticipant(meetingID int64, form ParticipantForm) (Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertParticipantFunc != nil {
		return m.UpsertParticipantFunc(meetingID, form)
	}
	return Participant{}, nil
}

func (m *MockStore) CreateGameRecord(rec NewGameRecord) (GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateGameRecordCalls = append(m.CreateGameRecordCalls, rec)
	if m.CreateGameRecordFunc != nil {
		return m.CreateGameRecordFunc(rec)
	}
	return GameRecord{}, nil
}

func (m *MockStore) GetGameRecord(id int64) (GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetGameRecordFunc != nil {
		return m.GetGameRecordFunc(id)
	}
	return GameRecord{}, nil
}

func (m *MockStore) ListMeetingRecords(meetingID int64) ([]GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListMeetingRecordsFunc != nil {
		return m.ListMeetingRecordsFunc(meetingID)
	}
	return nil, nil
}

func (m *MockStore) RecordsForProcessing() ([]GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecordsForProcessingFunc != nil {
		return m.RecordsForProcessingFunc()
	}
	return nil, nil
}

func (m *MockStore) UpdateProcessingStatus(recordID int64, status ProcessingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateProcessingStatusCalls = append(m.UpdateProcessingStatusCalls, struct {
		RecordID int64
		Status   ProcessingStatus
	}{recordID, status})
	if m.UpdateProcessingStatusFunc != nil {
		return m.UpdateProcessingStatusFunc(recordID, status)
	}
	return nil
}

func (m *MockStore) UnregisteredResults(name string) ([]GameResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UnregisteredResultsCalls = append(m.UnregisteredResultsCalls, name)
	if m.UnregisteredResultsFunc != nil {
		return m.UnregisteredResultsFunc(name)
	}
	return nil, nil
}

func (m *MockStore) ClaimResults(playerID int64, resultIDs []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClaimResultsCalls = append(m.ClaimResultsCalls, struct {
		PlayerID  int64
		ResultIDs []int64
	}{playerID, resultIDs})
	if m.ClaimResultsFunc != nil {
		return m.ClaimResultsFunc(playerID, resultIDs)
	}
	return 0, nil
}

func (m *MockStore) ResultRows() ([]ResultRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ResultRowsFunc != nil {
		return m.ResultRowsFunc()
	}
	return nil, nil
}

func (m *MockStore) AttendanceRows() ([]AttendanceRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AttendanceRowsFunc != nil {
		return m.AttendanceRowsFunc()
	}
	return nil, nil
}

func (m *MockStore) PlayerRefs() ([]PlayerRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PlayerRefsFunc != nil {
		return m.PlayerRefsFunc()
	}
	return nil, nil
}

func (m *MockStore) GameRefs() ([]GameRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GameRefsFunc != nil {
		return m.GameRefsFunc()
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
