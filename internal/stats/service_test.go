package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meeplemeet/meeplemeet/internal/tracker"
)

func ptr(v int64) *int64 { return &v }

func newSource(rows []tracker.ResultRow, attendance []tracker.AttendanceRow, players []tracker.PlayerRef, games []tracker.GameRef) Source {
	m := tracker.NewMock()
	m.ResultRowsFunc = func() ([]tracker.ResultRow, error) { return rows, nil }
	m.AttendanceRowsFunc = func() ([]tracker.AttendanceRow, error) { return attendance, nil }
	m.PlayerRefsFunc = func() ([]tracker.PlayerRef, error) { return players, nil }
	m.GameRefsFunc = func() ([]tracker.GameRef, error) { return games, nil }
	return m
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{66.666666, 66.7},
		{87.25, 87.3},
		{87.24, 87.2},
		{100, 100},
		{0.05, 0.1},
		{-0.25, -0.2},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Round1(tc.in), "Round1(%v)", tc.in)
	}
}

func TestWinRatesReturnedAtFullPrecision(t *testing.T) {
	// Two wins over three plays comes back as 66.666..., not 66.7.
	rows := []tracker.ResultRow{
		{ResultID: 1, RecordID: 1, GameID: 1, PlayerID: ptr(1), IsWinner: true},
		{ResultID: 2, RecordID: 2, GameID: 1, PlayerID: ptr(1), IsWinner: true},
		{ResultID: 3, RecordID: 3, GameID: 1, PlayerID: ptr(1)},
	}
	svc := New(newSource(rows, nil, []tracker.PlayerRef{{ID: 1, Name: "Alice"}}, nil))

	got, err := svc.Global()
	require.NoError(t, err)
	require.Len(t, got.TopWinners, 1)
	assert.InDelta(t, 200.0/3.0, got.TopWinners[0].WinRate, 1e-9)
	assert.NotEqual(t, 66.7, got.TopWinners[0].WinRate)
}

func TestGlobalEmptyStore(t *testing.T) {
	svc := New(newSource(nil, nil, nil, nil))

	got, err := svc.Global()
	require.NoError(t, err)
	assert.Empty(t, got.PopularGames)
	assert.Empty(t, got.TopWinners)
	assert.Empty(t, got.ActivePlayers)
	assert.Empty(t, got.PlayerCountDistribution)
	assert.NotNil(t, got.PopularGames)
	assert.NotNil(t, got.TopWinners)
}

func TestPopularGamesOrdering(t *testing.T) {
	// Game 1 has three records, game 3 two, game 2 one.
	rows := []tracker.ResultRow{
		{ResultID: 1, RecordID: 1, GameID: 1, PlayerName: "x"},
		{ResultID: 2, RecordID: 1, GameID: 1, PlayerName: "y"},
		{ResultID: 3, RecordID: 2, GameID: 1, PlayerName: "x"},
		{ResultID: 4, RecordID: 3, GameID: 1, PlayerName: "x"},
		{ResultID: 5, RecordID: 4, GameID: 3, PlayerName: "x"},
		{ResultID: 6, RecordID: 5, GameID: 3, PlayerName: "x"},
		{ResultID: 7, RecordID: 6, GameID: 2, PlayerName: "x"},
	}
	games := []tracker.GameRef{{ID: 1, Name: "Azul"}, {ID: 2, Name: "Brass"}, {ID: 3, Name: "Catan"}}

	svc := New(newSource(rows, nil, nil, games))
	got, err := svc.Global()
	require.NoError(t, err)

	require.Len(t, got.PopularGames, 3)
	assert.Equal(t, "Azul", got.PopularGames[0].Name)
	assert.Equal(t, 3, got.PopularGames[0].Plays)
	assert.Equal(t, "Catan", got.PopularGames[1].Name)
	assert.Equal(t, "Brass", got.PopularGames[2].Name)
}

func TestPopularGamesTieByID(t *testing.T) {
	rows := []tracker.ResultRow{
		{ResultID: 1, RecordID: 1, GameID: 2, PlayerName: "x"},
		{ResultID: 2, RecordID: 2, GameID: 1, PlayerName: "x"},
	}
	svc := New(newSource(rows, nil, nil, []tracker.GameRef{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}))
	got, err := svc.Global()
	require.NoError(t, err)

	require.Len(t, got.PopularGames, 2)
	assert.EqualValues(t, 1, got.PopularGames[0].GameID)
	assert.EqualValues(t, 2, got.PopularGames[1].GameID)
}

func TestTopWinnersTieBreaks(t *testing.T) {
	// Alice and the unregistered "Zed" are both at 75% with three wins.
	// Registered identities sort first on the full tie.
	rows := []tracker.ResultRow{}
	id := int64(1)
	addRow := func(pid *int64, name string, win bool) {
		rows = append(rows, tracker.ResultRow{ResultID: id, RecordID: id, GameID: 1, PlayerID: pid, PlayerName: name, IsWinner: win})
		id++
	}
	for i := 0; i < 3; i++ {
		addRow(ptr(1), "", true)
		addRow(nil, "Zed", true)
	}
	addRow(ptr(1), "", false)
	addRow(nil, "Zed", false)
	// Bob has a perfect rate but only one win.
	addRow(ptr(2), "", true)

	players := []tracker.PlayerRef{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}
	svc := New(newSource(rows, nil, players, nil))
	got, err := svc.Global()
	require.NoError(t, err)

	require.Len(t, got.TopWinners, 3)
	assert.Equal(t, "Bob", got.TopWinners[0].Name)
	assert.Equal(t, float64(100), got.TopWinners[0].WinRate)
	assert.Equal(t, "Alice", got.TopWinners[1].Name)
	assert.Equal(t, float64(75), got.TopWinners[1].WinRate)
	assert.Equal(t, "Zed", got.TopWinners[2].Name)
	assert.Zero(t, got.TopWinners[2].PlayerID)
}

func TestTopWinnersMoreWinsAtEqualRate(t *testing.T) {
	// Both players sit at 75%, but 6 wins from 8 outrank 3 from 4.
	rows := []tracker.ResultRow{}
	id := int64(1)
	addRow := func(pid int64, win bool) {
		rows = append(rows, tracker.ResultRow{ResultID: id, RecordID: id, GameID: 1, PlayerID: ptr(pid), IsWinner: win})
		id++
	}
	for i := 0; i < 3; i++ {
		addRow(1, true)
	}
	addRow(1, false)
	for i := 0; i < 6; i++ {
		addRow(2, true)
	}
	addRow(2, false)
	addRow(2, false)

	players := []tracker.PlayerRef{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}
	svc := New(newSource(rows, nil, players, nil))
	got, err := svc.Global()
	require.NoError(t, err)

	require.Len(t, got.TopWinners, 2)
	assert.Equal(t, "Bob", got.TopWinners[0].Name)
	assert.Equal(t, 6, got.TopWinners[0].Wins)
	assert.Equal(t, "Alice", got.TopWinners[1].Name)
}

func TestTopWinnersFewerPlaysAtEqualWins(t *testing.T) {
	// Both winless at 0%; the one with fewer plays ranks higher.
	rows := []tracker.ResultRow{
		{ResultID: 1, RecordID: 1, GameID: 1, PlayerID: ptr(1)},
		{ResultID: 2, RecordID: 2, GameID: 1, PlayerID: ptr(1)},
		{ResultID: 3, RecordID: 3, GameID: 1, PlayerID: ptr(2)},
	}
	players := []tracker.PlayerRef{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}
	svc := New(newSource(rows, nil, players, nil))
	got, err := svc.Global()
	require.NoError(t, err)

	require.Len(t, got.TopWinners, 2)
	assert.Equal(t, "Bob", got.TopWinners[0].Name)
	assert.Equal(t, 1, got.TopWinners[0].Plays)
	assert.Equal(t, "Alice", got.TopWinners[1].Name)
}

func TestTopWinnersExcludesZeroPlays(t *testing.T) {
	rows := []tracker.ResultRow{
		{ResultID: 1, RecordID: 1, GameID: 1, PlayerID: ptr(1), IsWinner: true},
	}
	players := []tracker.PlayerRef{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Idle"}}
	svc := New(newSource(rows, nil, players, nil))
	got, err := svc.Global()
	require.NoError(t, err)

	require.Len(t, got.TopWinners, 1)
	assert.Equal(t, "Alice", got.TopWinners[0].Name)
}

func TestTopWinnersCapped(t *testing.T) {
	rows := []tracker.ResultRow{}
	for i := int64(1); i <= 7; i++ {
		rows = append(rows, tracker.ResultRow{ResultID: i, RecordID: i, GameID: 1, PlayerID: ptr(i), IsWinner: true})
	}
	svc := New(newSource(rows, nil, nil, nil))
	got, err := svc.Global()
	require.NoError(t, err)
	assert.Len(t, got.TopWinners, 5)
}

func TestActivePlayersUnionOfAttendanceAndResults(t *testing.T) {
	// Player 1 confirmed at meetings 1 and 2; player 2 never confirmed
	// but has a result linked to meeting 2. Player 1 also has a result at
	// meeting 1, which must not double-count.
	attendance := []tracker.AttendanceRow{
		{MeetingID: 1, PlayerID: 1},
		{MeetingID: 2, PlayerID: 1},
	}
	rows := []tracker.ResultRow{
		{ResultID: 1, RecordID: 1, GameID: 1, MeetingID: ptr(1), PlayerID: ptr(1), IsWinner: true},
		{ResultID: 2, RecordID: 1, GameID: 1, MeetingID: ptr(2), PlayerID: ptr(2)},
		{ResultID: 3, RecordID: 2, GameID: 1, PlayerName: "Guest"},
	}
	players := []tracker.PlayerRef{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}

	svc := New(newSource(rows, attendance, players, nil))
	got, err := svc.Global()
	require.NoError(t, err)

	require.Len(t, got.ActivePlayers, 2)
	assert.Equal(t, "Alice", got.ActivePlayers[0].Name)
	assert.Equal(t, 2, got.ActivePlayers[0].Meetings)
	assert.Equal(t, "Bob", got.ActivePlayers[1].Name)
	assert.Equal(t, 1, got.ActivePlayers[1].Meetings)
}

func TestPlayerCountDistribution(t *testing.T) {
	// Two records with two players, one with three.
	rows := []tracker.ResultRow{
		{ResultID: 1, RecordID: 1, GameID: 1, PlayerName: "a"},
		{ResultID: 2, RecordID: 1, GameID: 1, PlayerName: "b"},
		{ResultID: 3, RecordID: 2, GameID: 1, PlayerName: "a"},
		{ResultID: 4, RecordID: 2, GameID: 1, PlayerName: "b"},
		{ResultID: 5, RecordID: 3, GameID: 1, PlayerName: "a"},
		{ResultID: 6, RecordID: 3, GameID: 1, PlayerName: "b"},
		{ResultID: 7, RecordID: 3, GameID: 1, PlayerName: "c"},
	}
	svc := New(newSource(rows, nil, nil, nil))
	got, err := svc.Global()
	require.NoError(t, err)

	assert.Equal(t, map[int]int{2: 2, 3: 1}, got.PlayerCountDistribution)
}

func TestGameStats(t *testing.T) {
	rows := []tracker.ResultRow{
		{ResultID: 1, RecordID: 1, GameID: 1, PlayerID: ptr(1), Score: 10, IsWinner: true},
		{ResultID: 2, RecordID: 1, GameID: 1, PlayerName: "Guest", Score: -2},
		{ResultID: 3, RecordID: 2, GameID: 1, PlayerID: ptr(1), Score: 0},
		{ResultID: 4, RecordID: 3, GameID: 2, PlayerID: ptr(1), Score: 99, IsWinner: true},
	}
	players := []tracker.PlayerRef{{ID: 1, Name: "Alice"}}

	svc := New(newSource(rows, nil, players, nil))
	got, err := svc.Game(1)
	require.NoError(t, err)

	assert.Equal(t, 2, got.TotalPlays)
	assert.Equal(t, 2, got.TotalPlayers)
	// One winner over three results, at full precision.
	assert.InDelta(t, 100.0/3.0, got.WinRate, 1e-9)
	// Scores 10, -2 and 0.
	assert.InDelta(t, 8.0/3.0, got.AverageScore, 1e-9)
	require.Len(t, got.PerPlayer, 2)
	assert.Equal(t, "Alice", got.PerPlayer[0].Name)
	assert.Equal(t, 50.0, got.PerPlayer[0].WinRate)
	assert.Equal(t, "Guest", got.PerPlayer[1].Name)
}

func TestGameStatsUnknownGame(t *testing.T) {
	svc := New(newSource(nil, nil, nil, nil))
	got, err := svc.Game(42)
	require.NoError(t, err)
	assert.Zero(t, got.TotalPlays)
	assert.Zero(t, got.WinRate)
	assert.Empty(t, got.PerPlayer)
}

func TestPlayerStats(t *testing.T) {
	rows := []tracker.ResultRow{
		{ResultID: 1, RecordID: 1, GameID: 1, GameName: "Azul", PlayerID: ptr(1), IsWinner: true},
		{ResultID: 2, RecordID: 2, GameID: 1, GameName: "Azul", PlayerID: ptr(1)},
		{ResultID: 3, RecordID: 3, GameID: 2, GameName: "Brass", PlayerID: ptr(1), IsWinner: true},
		{ResultID: 4, RecordID: 4, GameID: 3, GameName: "Catan", PlayerID: ptr(2), IsWinner: true},
		{ResultID: 5, RecordID: 5, GameID: 3, GameName: "Catan", PlayerName: "Guest"},
	}
	svc := New(newSource(rows, nil, nil, nil))
	got, err := svc.Player(1)
	require.NoError(t, err)

	assert.Equal(t, 3, got.TotalPlays)
	assert.Equal(t, 2, got.TotalWins)
	// Full precision; rounding is the caller's display policy.
	assert.InDelta(t, 200.0/3.0, got.WinRate, 1e-9)
	require.Len(t, got.MostPlayedGames, 2)
	assert.Equal(t, "Azul", got.MostPlayedGames[0].Name)
	assert.Equal(t, 2, got.MostPlayedGames[0].Plays)
	assert.Equal(t, "Brass", got.MostPlayedGames[1].Name)
}

func TestPlayerStatsNoResults(t *testing.T) {
	svc := New(newSource(nil, nil, nil, nil))
	got, err := svc.Player(1)
	require.NoError(t, err)
	assert.Zero(t, got.TotalPlays)
	assert.Zero(t, got.WinRate)
	assert.Empty(t, got.MostPlayedGames)
}
