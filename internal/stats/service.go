package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/meeplemeet/meeplemeet/internal/identity"
	"github.com/meeplemeet/meeplemeet/internal/tracker"
)

const leaderboardSize = 5

// New creates an aggregator reading from the given source.
func New(source Source) *Service {
	return &Service{source: source}
}

// Round1 rounds half-up toward positive infinity to one decimal, so
// -0.25 becomes -0.2. The aggregator itself returns full-precision
// values; rounding is a display policy applied by callers.
func Round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// tally accumulates one identity's wins and plays.
type tally struct {
	registered bool
	playerID   int64
	name       string
	wins       int
	plays      int
}

func (t tally) rate() float64 {
	if t.plays == 0 {
		return 0
	}
	return float64(t.wins) / float64(t.plays) * 100
}

// winnerLess orders the leaderboard: rate desc, wins desc, plays asc,
// registered identities before unregistered, then id asc or name asc.
func winnerLess(a, b tally) bool {
	if a.rate() != b.rate() {
		return a.rate() > b.rate()
	}
	if a.wins != b.wins {
		return a.wins > b.wins
	}
	if a.plays != b.plays {
		return a.plays < b.plays
	}
	if a.registered != b.registered {
		return a.registered
	}
	if a.registered {
		return a.playerID < b.playerID
	}
	return a.name < b.name
}

// perPlayerLess orders a game's per-player breakdown: rate desc, plays
// desc, then id asc or name asc.
func perPlayerLess(a, b tally) bool {
	if a.rate() != b.rate() {
		return a.rate() > b.rate()
	}
	if a.plays != b.plays {
		return a.plays > b.plays
	}
	if a.registered != b.registered {
		return a.registered
	}
	if a.registered {
		return a.playerID < b.playerID
	}
	return a.name < b.name
}

func rowIdentity(row tracker.ResultRow) (identity.Identity, error) {
	var playerID int64
	if row.PlayerID != nil {
		playerID = *row.PlayerID
	}
	return identity.Resolve(playerID, row.PlayerName)
}

func tallyRows(rows []tracker.ResultRow) (map[string]*tally, error) {
	tallies := make(map[string]*tally)
	for _, row := range rows {
		ident, err := rowIdentity(row)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", row.ResultID, err)
		}
		t, ok := tallies[ident.Key()]
		if !ok {
			t = &tally{registered: ident.IsRegistered(), playerID: ident.PlayerID, name: ident.Name}
			tallies[ident.Key()] = t
		}
		t.plays++
		if row.IsWinner {
			t.wins++
		}
	}
	return tallies, nil
}

func sortedTallies(tallies map[string]*tally, less func(a, b tally) bool) []tally {
	out := make([]tally, 0, len(tallies))
	for _, t := range tallies {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func winnerRows(tallies []tally, names map[int64]string) []WinnerRow {
	rows := make([]WinnerRow, 0, len(tallies))
	for _, t := range tallies {
		name := t.name
		if t.registered {
			name = names[t.playerID]
		}
		rows = append(rows, WinnerRow{
			PlayerID: t.playerID,
			Name:     name,
			Wins:     t.wins,
			Plays:    t.plays,
			WinRate:  t.rate(),
		})
	}
	return rows
}

// Global computes the leaderboard view across all records.
func (s *Service) Global() (GlobalStats, error) {
	rows, err := s.source.ResultRows()
	if err != nil {
		return GlobalStats{}, err
	}
	attendance, err := s.source.AttendanceRows()
	if err != nil {
		return GlobalStats{}, err
	}
	playerRefs, err := s.source.PlayerRefs()
	if err != nil {
		return GlobalStats{}, err
	}
	gameRefs, err := s.source.GameRefs()
	if err != nil {
		return GlobalStats{}, err
	}

	playerNames := make(map[int64]string, len(playerRefs))
	for _, ref := range playerRefs {
		playerNames[ref.ID] = ref.Name
	}
	gameNames := make(map[int64]string, len(gameRefs))
	for _, ref := range gameRefs {
		gameNames[ref.ID] = ref.Name
	}

	stats := GlobalStats{
		PopularGames:            []GamePlays{},
		TopWinners:              []WinnerRow{},
		ActivePlayers:           []ActiveRow{},
		PlayerCountDistribution: map[int]int{},
	}

	// Popularity counts distinct records per game.
	recordsPerGame := make(map[int64]map[int64]struct{})
	recordSizes := make(map[int64]int)
	for _, row := range rows {
		if recordsPerGame[row.GameID] == nil {
			recordsPerGame[row.GameID] = make(map[int64]struct{})
		}
		recordsPerGame[row.GameID][row.RecordID] = struct{}{}
		recordSizes[row.RecordID]++
	}
	for gameID, records := range recordsPerGame {
		name := gameNames[gameID]
		stats.PopularGames = append(stats.PopularGames, GamePlays{GameID: gameID, Name: name, Plays: len(records)})
	}
	sort.Slice(stats.PopularGames, func(i, j int) bool {
		a, b := stats.PopularGames[i], stats.PopularGames[j]
		if a.Plays != b.Plays {
			return a.Plays > b.Plays
		}
		return a.GameID < b.GameID
	})
	if len(stats.PopularGames) > leaderboardSize {
		stats.PopularGames = stats.PopularGames[:leaderboardSize]
	}

	for _, size := range recordSizes {
		stats.PlayerCountDistribution[size]++
	}

	tallies, err := tallyRows(rows)
	if err != nil {
		return GlobalStats{}, err
	}
	winners := sortedTallies(tallies, winnerLess)
	if len(winners) > leaderboardSize {
		winners = winners[:leaderboardSize]
	}
	stats.TopWinners = winnerRows(winners, playerNames)

	// Attendance is the union of confirmed participant rows and
	// meeting-linked results, counted per distinct meeting.
	meetingsPerPlayer := make(map[int64]map[int64]struct{})
	mark := func(playerID, meetingID int64) {
		if meetingsPerPlayer[playerID] == nil {
			meetingsPerPlayer[playerID] = make(map[int64]struct{})
		}
		meetingsPerPlayer[playerID][meetingID] = struct{}{}
	}
	for _, a := range attendance {
		mark(a.PlayerID, a.MeetingID)
	}
	for _, row := range rows {
		if row.PlayerID != nil && row.MeetingID != nil {
			mark(*row.PlayerID, *row.MeetingID)
		}
	}
	for playerID, meetings := range meetingsPerPlayer {
		stats.ActivePlayers = append(stats.ActivePlayers, ActiveRow{
			PlayerID: playerID,
			Name:     playerNames[playerID],
			Meetings: len(meetings),
		})
	}
	sort.Slice(stats.ActivePlayers, func(i, j int) bool {
		a, b := stats.ActivePlayers[i], stats.ActivePlayers[j]
		if a.Meetings != b.Meetings {
			return a.Meetings > b.Meetings
		}
		return a.PlayerID < b.PlayerID
	})
	if len(stats.ActivePlayers) > leaderboardSize {
		stats.ActivePlayers = stats.ActivePlayers[:leaderboardSize]
	}

	return stats, nil
}

// Game summarizes a single game across all its records.
func (s *Service) Game(gameID int64) (GameStats, error) {
	rows, err := s.source.ResultRows()
	if err != nil {
		return GameStats{}, err
	}
	playerRefs, err := s.source.PlayerRefs()
	if err != nil {
		return GameStats{}, err
	}
	playerNames := make(map[int64]string, len(playerRefs))
	for _, ref := range playerRefs {
		playerNames[ref.ID] = ref.Name
	}

	gameRows := make([]tracker.ResultRow, 0, len(rows))
	for _, row := range rows {
		if row.GameID == gameID {
			gameRows = append(gameRows, row)
		}
	}

	stats := GameStats{PerPlayer: []WinnerRow{}}
	if len(gameRows) == 0 {
		return stats, nil
	}

	records := make(map[int64]struct{})
	wins := 0
	scoreSum := 0
	for _, row := range gameRows {
		records[row.RecordID] = struct{}{}
		if row.IsWinner {
			wins++
		}
		scoreSum += row.Score
	}
	stats.TotalPlays = len(records)
	stats.WinRate = float64(wins) / float64(len(gameRows)) * 100
	stats.AverageScore = float64(scoreSum) / float64(len(gameRows))

	tallies, err := tallyRows(gameRows)
	if err != nil {
		return GameStats{}, err
	}
	stats.TotalPlayers = len(tallies)
	stats.PerPlayer = winnerRows(sortedTallies(tallies, perPlayerLess), playerNames)
	return stats, nil
}

// Player summarizes a single registered player across all results, both
// recorded directly and claimed later.
func (s *Service) Player(playerID int64) (PlayerStats, error) {
	rows, err := s.source.ResultRows()
	if err != nil {
		return PlayerStats{}, err
	}

	stats := PlayerStats{MostPlayedGames: []GamePlayed{}}
	perGame := make(map[int64]*GamePlayed)
	for _, row := range rows {
		if row.PlayerID == nil || *row.PlayerID != playerID {
			continue
		}
		stats.TotalPlays++
		if row.IsWinner {
			stats.TotalWins++
		}
		g, ok := perGame[row.GameID]
		if !ok {
			g = &GamePlayed{GameID: row.GameID, Name: row.GameName}
			perGame[row.GameID] = g
		}
		g.Plays++
		if row.IsWinner {
			g.Wins++
		}
	}
	if stats.TotalPlays > 0 {
		stats.WinRate = float64(stats.TotalWins) / float64(stats.TotalPlays) * 100
	}

	for _, g := range perGame {
		stats.MostPlayedGames = append(stats.MostPlayedGames, *g)
	}
	sort.Slice(stats.MostPlayedGames, func(i, j int) bool {
		a, b := stats.MostPlayedGames[i], stats.MostPlayedGames[j]
		if a.Plays != b.Plays {
			return a.Plays > b.Plays
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.GameID < b.GameID
	})
	return stats, nil
}
