package tracker

// Store defines the interface for interacting with the tracker's data.
type Store interface {
	CreatePlayer(form PlayerForm) (Player, error)
	GetPlayer(id int64) (Player, error)
	UpdatePlayer(id int64, form PlayerForm) (Player, error)
	DeletePlayer(id int64) error
	ListPlayers() ([]Player, error)
	PlayerExists(id int64) (bool, error)
	PlayerHistory(playerID int64) ([]HistoryEntry, error)

	CreateGame(form GameForm) (Game, error)
	GetGame(id int64) (Game, error)
	UpdateGame(id int64, form GameForm) (Game, error)
	ListGames() ([]Game, error)

	CreateMeeting(form MeetingForm) (Meeting, error)
	GetMeeting(id int64) (MeetingDetail, error)
	UpdateMeeting(id int64, form MeetingForm) (Meeting, error)
	DeleteMeeting(id int64) error
	ListMeetings() ([]Meeting, error)
	UpsertParticipant(meetingID int64, form ParticipantForm) (Participant, error)

	CreateGameRecord(rec NewGameRecord) (GameRecord, error)
	GetGameRecord(id int64) (GameRecord, error)
	ListMeetingRecords(meetingID int64) ([]GameRecord, error)
	RecordsForProcessing() ([]GameRecord, error)
	UpdateProcessingStatus(recordID int64, status ProcessingStatus) error

	UnregisteredResults(name string) ([]GameResult, error)
	ClaimResults(playerID int64, resultIDs []int64) (int64, error)

	ResultRows() ([]ResultRow, error)
	AttendanceRows() ([]AttendanceRow, error)
	PlayerRefs() ([]PlayerRef, error)
	GameRefs() ([]GameRef, error)

	Clear()
}
