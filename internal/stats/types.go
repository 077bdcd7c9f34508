package stats

import "github.com/meeplemeet/meeplemeet/internal/tracker"

// Source is the slice of the record store the aggregator reads from.
// Every query recomputes from these rows, so the aggregator itself holds
// no state.
type Source interface {
	ResultRows() ([]tracker.ResultRow, error)
	AttendanceRows() ([]tracker.AttendanceRow, error)
	PlayerRefs() ([]tracker.PlayerRef, error)
	GameRefs() ([]tracker.GameRef, error)
}

// Service computes statistics over the record store.
type Service struct {
	source Source
}

// GamePlays is one entry of the popularity ranking.
type GamePlays struct {
	GameID int64  `json:"game_id"`
	Name   string `json:"name"`
	Plays  int    `json:"plays"`
}

// WinnerRow is one identity's win record. PlayerID is zero for
// unregistered identities, which are keyed by name instead.
type WinnerRow struct {
	PlayerID int64   `json:"player_id,omitempty"`
	Name     string  `json:"name"`
	Wins     int     `json:"wins"`
	Plays    int     `json:"plays"`
	WinRate  float64 `json:"win_rate"`
}

// ActiveRow counts a registered player's distinct meeting attendance.
type ActiveRow struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
	Meetings int    `json:"meetings"`
}

// GlobalStats is the full leaderboard view.
type GlobalStats struct {
	PopularGames            []GamePlays   `json:"popular_games"`
	TopWinners              []WinnerRow   `json:"top_winners"`
	ActivePlayers           []ActiveRow   `json:"active_players"`
	PlayerCountDistribution map[int]int   `json:"player_count_distribution"`
}

// GameStats summarizes a single game across all its records.
type GameStats struct {
	TotalPlays   int         `json:"total_plays"`
	TotalPlayers int         `json:"total_players"`
	WinRate      float64     `json:"win_rate"`
	AverageScore float64     `json:"average_score"`
	PerPlayer    []WinnerRow `json:"per_player"`
}

// GamePlayed is one game in a player's most-played list.
type GamePlayed struct {
	GameID int64  `json:"game_id"`
	Name   string `json:"name"`
	Plays  int    `json:"plays"`
	Wins   int    `json:"wins"`
}

// PlayerStats summarizes a single registered player.
type PlayerStats struct {
	TotalPlays      int          `json:"total_plays"`
	TotalWins       int          `json:"total_wins"`
	WinRate         float64      `json:"win_rate"`
	MostPlayedGames []GamePlayed `json:"most_played_games"`
}
