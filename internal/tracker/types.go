package tracker

import (
	"database/sql"
	"sync"
)

// store handles all database operations for the tracker.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// ProcessingStatus tracks how far a game record has advanced through the
// async processing pipeline.
type ProcessingStatus string

const (
	StatusNew            ProcessingStatus = "NEW"
	StatusResultNotified ProcessingStatus = "RESULT_NOTIFIED"
	StatusCompleted      ProcessingStatus = "COMPLETED"
)

// Player is a registered participant.
type Player struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year"`
	MBTI      string `json:"mbti,omitempty"`
	Location  string `json:"location,omitempty"`
}

// PlayerForm carries the writable player fields.
type PlayerForm struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year"`
	MBTI      string `json:"mbti"`
	Location  string `json:"location"`
}

type Game struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	MinPlayers  int    `json:"min_players"`
	MaxPlayers  int    `json:"max_players"`
	Description string `json:"description,omitempty"`
}

type GameForm struct {
	Name        string `json:"name"`
	MinPlayers  int    `json:"min_players"`
	MaxPlayers  int    `json:"max_players"`
	Description string `json:"description"`
}

// PlayerRef is the id+name pair embedded in other views.
type PlayerRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type GameRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Meeting is the list-view shape; counts are derived on read.
type Meeting struct {
	ID                int64      `json:"id"`
	Date              string     `json:"date"`
	Location          string     `json:"location"`
	Description       string     `json:"description,omitempty"`
	HostID            int64      `json:"host_id"`
	Host              *PlayerRef `json:"host,omitempty"`
	GameCount         int        `json:"game_count"`
	ParticipantCount  int        `json:"participant_count"`
	UnregisteredCount int        `json:"unregistered_count"`
}

type MeetingForm struct {
	Date        string `json:"date"`
	Location    string `json:"location"`
	Description string `json:"description"`
	HostID      int64  `json:"host_id"`
}

type Participant struct {
	ID          int64     `json:"id"`
	Player      PlayerRef `json:"player"`
	ArrivalTime string    `json:"arrival_time,omitempty"`
	Status      string    `json:"status"`
}

type ParticipantForm struct {
	PlayerID    int64  `json:"player_id"`
	ArrivalTime string `json:"arrival_time"`
	Status      string `json:"status"`
}

// MeetingDetail is the detail-view shape: the meeting plus its participants
// and game records.
type MeetingDetail struct {
	Meeting
	Participants []Participant `json:"participants"`
	GameRecords  []GameRecord  `json:"game_records"`
}

// GameRecord is one instance of a game being played.
type GameRecord struct {
	ID               int64            `json:"id"`
	GameID           int64            `json:"game_id"`
	GameName         string           `json:"game_name,omitempty"`
	MeetingID        *int64           `json:"meeting_id"`
	Date             string           `json:"date"`
	ProcessingStatus ProcessingStatus `json:"-"`
	Results          []GameResult     `json:"results"`
}

// GameResult is one participant's outcome within a record. Exactly one of
// PlayerID / PlayerName is set: a nil PlayerID means the row belongs to an
// unregistered participant identified only by name.
type GameResult struct {
	ID           int64  `json:"id"`
	GameRecordID int64  `json:"game_record_id"`
	PlayerID     *int64 `json:"player_id,omitempty"`
	PlayerName   string `json:"player_name,omitempty"`
	Score        int    `json:"score"`
	IsWinner     bool   `json:"is_winner"`

	// ResolvedName is the display name for the row: the player's current
	// name for registered rows, the recorded name otherwise. Derived on
	// read, never written.
	ResolvedName string `json:"resolved_name,omitempty"`
}

// NewGameRecord is the record-creation payload. A zero GameID with a
// non-nil NewGame creates the game inline in the same transaction. On the
// wire a player_id of 0 is the "unregistered, use player_name" sentinel.
type NewGameRecord struct {
	GameID    int64           `json:"game_id"`
	MeetingID *int64          `json:"meeting_id,omitempty"`
	Date      string          `json:"date"`
	NewGame   *GameForm       `json:"new_game,omitempty"`
	Results   []NewGameResult `json:"results"`
}

type NewGameResult struct {
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`
	Score      int    `json:"score"`
	IsWinner   bool   `json:"is_winner"`
}

// HistoryEntry is one row of a player's game history, with the record's
// game and meeting context joined in.
type HistoryEntry struct {
	ResultID        int64  `json:"id"`
	GameID          int64  `json:"game_id"`
	GameName        string `json:"game_name"`
	Score           int    `json:"score"`
	IsWinner        bool   `json:"is_winner"`
	MeetingID       *int64 `json:"meeting_id"`
	MeetingDate     string `json:"meeting_date,omitempty"`
	MeetingLocation string `json:"meeting_location,omitempty"`
}

// ResultRow is the flattened join the aggregator consumes: one game result
// with its record, game and meeting context.
type ResultRow struct {
	ResultID   int64
	RecordID   int64
	GameID     int64
	GameName   string
	MeetingID  *int64
	PlayerID   *int64
	PlayerName string
	Score      int
	IsWinner   bool
}

// AttendanceRow marks a confirmed participant of a meeting.
type AttendanceRow struct {
	MeetingID int64
	PlayerID  int64
}
