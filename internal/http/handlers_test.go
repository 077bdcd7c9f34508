package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meeplemeet/meeplemeet/internal/config"
	"github.com/meeplemeet/meeplemeet/internal/database"
	"github.com/meeplemeet/meeplemeet/internal/identity"
	"github.com/meeplemeet/meeplemeet/internal/metrics"
	"github.com/meeplemeet/meeplemeet/internal/notifier"
	"github.com/meeplemeet/meeplemeet/internal/processor"
	"github.com/meeplemeet/meeplemeet/internal/pubsub"
	"github.com/meeplemeet/meeplemeet/internal/stats"
	"github.com/meeplemeet/meeplemeet/internal/tracker"
)

type testServer struct {
	*Server
	notifier *notifier.Mock
	pubsub   *pubsub.MockPubSubClient
}

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(dbTeardown)

	store := tracker.New(db)
	cfg := config.Config{}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	notif := notifier.NewMock()
	ps := pubsub.NewMock("TEST")
	identitySvc := identity.NewService(store, metricsSvc)
	statsSvc := stats.New(store)
	proc := processor.New(store, notif, metricsSvc, ps)

	server := NewServer(store, identitySvc, statsSvc, metricsSvc, metricsHandler, cfg, notif, proc, ps)
	return &testServer{Server: server, notifier: notif, pubsub: ps}
}

func (ts *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	ts.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func (ts *testServer) createPlayer(t *testing.T, name string) tracker.Player {
	t.Helper()
	rr := ts.do(t, "POST", "/players", tracker.PlayerForm{Name: name})
	require.Equal(t, http.StatusCreated, rr.Code)
	return decode[tracker.Player](t, rr)
}

func (ts *testServer) createGame(t *testing.T, name string) tracker.Game {
	t.Helper()
	rr := ts.do(t, "POST", "/games", tracker.GameForm{Name: name})
	require.Equal(t, http.StatusCreated, rr.Code)
	return decode[tracker.Game](t, rr)
}

func (ts *testServer) createMeeting(t *testing.T, hostID int64) tracker.Meeting {
	t.Helper()
	rr := ts.do(t, "POST", "/meetings", tracker.MeetingForm{Date: "2025-06-14", Location: "Community Hall", HostID: hostID})
	require.Equal(t, http.StatusCreated, rr.Code)
	return decode[tracker.Meeting](t, rr)
}

func TestHealthCheckHandler(t *testing.T) {
	ts := setupTestServer(t)
	rr := ts.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestPlayerEndpoints(t *testing.T) {
	ts := setupTestServer(t)

	player := ts.createPlayer(t, "Alice")
	assert.NotZero(t, player.ID)

	rr := ts.do(t, "POST", "/players", tracker.PlayerForm{Name: "   "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, "GET", "/players", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	players := decode[[]tracker.Player](t, rr)
	require.Len(t, players, 1)

	rr = ts.do(t, "GET", fmt.Sprintf("/players/%d", player.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	detail := decode[playerDetail](t, rr)
	assert.Equal(t, "Alice", detail.Name)
	assert.Empty(t, detail.History)

	rr = ts.do(t, "PUT", fmt.Sprintf("/players/%d", player.ID), tracker.PlayerForm{Name: "Alice B"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, "GET", "/players/999", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	errBody := decode[map[string]string](t, rr)
	assert.Contains(t, errBody["error"], "999")

	rr = ts.do(t, "GET", "/players/0", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, "DELETE", fmt.Sprintf("/players/%d", player.ID), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestDeleteHostingPlayerConflicts(t *testing.T) {
	ts := setupTestServer(t)
	host := ts.createPlayer(t, "Host")
	ts.createMeeting(t, host.ID)

	rr := ts.do(t, "DELETE", fmt.Sprintf("/players/%d", host.ID), nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestGameEndpoints(t *testing.T) {
	ts := setupTestServer(t)
	game := ts.createGame(t, "Catan")
	assert.Equal(t, 2, game.MinPlayers)

	rr := ts.do(t, "GET", fmt.Sprintf("/games/%d", game.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	detail := decode[gameDetail](t, rr)
	assert.Equal(t, "Catan", detail.Name)
	assert.Zero(t, detail.Stats.TotalPlays)

	rr = ts.do(t, "GET", "/games/123", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMeetingEndpoints(t *testing.T) {
	ts := setupTestServer(t)
	host := ts.createPlayer(t, "Host")
	meeting := ts.createMeeting(t, host.ID)

	require.Len(t, ts.notifier.SendMeetingNotificationCalls, 1, "Creating a meeting announces it")
	require.Len(t, ts.pubsub.SendMessageCalls, 1)
	assert.Equal(t, "meeting-scheduled", ts.pubsub.SendMessageCalls[0].Topic)

	rr := ts.do(t, "POST", fmt.Sprintf("/meetings/%d/participants", meeting.ID), tracker.ParticipantForm{PlayerID: host.ID, Status: "maybe"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, "POST", fmt.Sprintf("/meetings/%d/participants", meeting.ID), tracker.ParticipantForm{PlayerID: host.ID, Status: "sometimes"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, "GET", fmt.Sprintf("/meetings/%d", meeting.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	detail := decode[tracker.MeetingDetail](t, rr)
	require.Len(t, detail.Participants, 1)
	assert.Equal(t, "maybe", detail.Participants[0].Status)

	rr = ts.do(t, "DELETE", fmt.Sprintf("/meetings/%d", meeting.ID), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestCreateMeetingDryRunSkipsPublish(t *testing.T) {
	ts := setupTestServer(t)
	host := ts.createPlayer(t, "Host")

	rr := ts.do(t, "POST", "/meetings?dry_run=true", tracker.MeetingForm{Date: "2025-06-14", Location: "Hall", HostID: host.ID})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Empty(t, ts.pubsub.SendMessageCalls)
}

func TestCreateGameRecordEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	player := ts.createPlayer(t, "Alice")
	game := ts.createGame(t, "Catan")

	body := tracker.NewGameRecord{
		GameID: game.ID,
		Date:   "2025-06-14",
		Results: []tracker.NewGameResult{
			{PlayerID: player.ID, Score: 10, IsWinner: true},
			{PlayerName: "Guest", Score: 8},
		},
	}
	rr := ts.do(t, "POST", "/game-records", body)
	require.Equal(t, http.StatusCreated, rr.Code)
	record := decode[tracker.GameRecord](t, rr)
	require.Len(t, record.Results, 2)
	assert.Equal(t, "Catan", record.GameName)

	require.Len(t, ts.pubsub.SendMessageCalls, 1)
	assert.Equal(t, "record-created", ts.pubsub.SendMessageCalls[0].Topic)

	rr = ts.do(t, "GET", fmt.Sprintf("/game-records/%d", record.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// Validation failures map to 400.
	rr = ts.do(t, "POST", "/game-records", tracker.NewGameRecord{GameID: game.ID, Date: "2025-06-14"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, "POST", "/game-records", tracker.NewGameRecord{
		GameID:  game.ID,
		Date:    "2025-06-14",
		Results: []tracker.NewGameResult{{PlayerName: "  "}},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Unknown references map to 404.
	rr = ts.do(t, "POST", "/game-records", tracker.NewGameRecord{
		GameID:  999,
		Date:    "2025-06-14",
		Results: []tracker.NewGameResult{{PlayerName: "Guest"}},
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateRecordUnderMeeting(t *testing.T) {
	ts := setupTestServer(t)
	host := ts.createPlayer(t, "Host")
	game := ts.createGame(t, "Catan")
	meeting := ts.createMeeting(t, host.ID)

	body := tracker.NewGameRecord{
		GameID:  game.ID,
		Date:    "2025-06-14",
		Results: []tracker.NewGameResult{{PlayerName: "Guest", IsWinner: true}},
	}
	rr := ts.do(t, "POST", fmt.Sprintf("/meetings/%d/records", meeting.ID), body)
	require.Equal(t, http.StatusCreated, rr.Code)
	record := decode[tracker.GameRecord](t, rr)
	require.NotNil(t, record.MeetingID)
	assert.Equal(t, meeting.ID, *record.MeetingID)

	rr = ts.do(t, "GET", fmt.Sprintf("/meetings/%d/records", meeting.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	records := decode[[]tracker.GameRecord](t, rr)
	assert.Len(t, records, 1)
}

func TestClaimFlow(t *testing.T) {
	ts := setupTestServer(t)
	game := ts.createGame(t, "Catan")

	body := tracker.NewGameRecord{
		GameID: game.ID,
		Date:   "2025-06-14",
		Results: []tracker.NewGameResult{
			{PlayerName: "Ali", Score: 10, IsWinner: true},
			{PlayerName: "Ali", Score: 3},
		},
	}
	rr := ts.do(t, "POST", "/game-records", body)
	require.Equal(t, http.StatusCreated, rr.Code)
	ts.pubsub.Reset()

	rr = ts.do(t, "GET", "/unregistered_records?name=Ali", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	unclaimed := decode[[]tracker.GameResult](t, rr)
	require.Len(t, unclaimed, 2)

	player := ts.createPlayer(t, "Alice")

	ids := []int64{unclaimed[0].ID, unclaimed[1].ID}
	rr = ts.do(t, "POST", fmt.Sprintf("/players/%d/claim_records", player.ID), map[string][]int64{"record_ids": ids})
	require.Equal(t, http.StatusOK, rr.Code)
	claimed := decode[map[string]int64](t, rr)
	assert.EqualValues(t, 2, claimed["claimed"])

	require.Len(t, ts.pubsub.SendMessageCalls, 1)
	assert.Equal(t, "records-claimed", ts.pubsub.SendMessageCalls[0].Topic)

	// Replay is a no-op and publishes nothing new.
	ts.pubsub.Reset()
	rr = ts.do(t, "POST", fmt.Sprintf("/players/%d/claim_records", player.ID), map[string][]int64{"record_ids": ids})
	require.Equal(t, http.StatusOK, rr.Code)
	claimed = decode[map[string]int64](t, rr)
	assert.EqualValues(t, 0, claimed["claimed"])
	assert.Empty(t, ts.pubsub.SendMessageCalls)

	// Claiming for a player nobody knows is a 404.
	rr = ts.do(t, "POST", "/players/999/claim_records", map[string][]int64{"record_ids": ids})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(t, "GET", "/unregistered_records?name=Ali", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]tracker.GameResult](t, rr))
}

func TestUnregisteredRecordsRequiresName(t *testing.T) {
	ts := setupTestServer(t)
	rr := ts.do(t, "GET", "/unregistered_records", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStatsEndpoints(t *testing.T) {
	ts := setupTestServer(t)
	player := ts.createPlayer(t, "Alice")
	game := ts.createGame(t, "Catan")

	body := tracker.NewGameRecord{
		GameID: game.ID,
		Date:   "2025-06-14",
		Results: []tracker.NewGameResult{
			{PlayerID: player.ID, Score: 10, IsWinner: true},
			{PlayerName: "Guest", Score: 8},
		},
	}
	rr := ts.do(t, "POST", "/game-records", body)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.do(t, "GET", "/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	global := decode[stats.GlobalStats](t, rr)
	require.Len(t, global.PopularGames, 1)
	assert.Equal(t, "Catan", global.PopularGames[0].Name)
	require.Len(t, global.TopWinners, 2)
	assert.Equal(t, "Alice", global.TopWinners[0].Name)

	rr = ts.do(t, "GET", fmt.Sprintf("/stats/player/%d", player.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	playerStats := decode[stats.PlayerStats](t, rr)
	assert.Equal(t, 1, playerStats.TotalPlays)
	assert.Equal(t, float64(100), playerStats.WinRate)

	rr = ts.do(t, "GET", "/stats/player/999", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStatsResponsesRoundedToOneDecimal(t *testing.T) {
	ts := setupTestServer(t)
	player := ts.createPlayer(t, "Alice")
	game := ts.createGame(t, "Catan")

	// Two wins over three plays: 66.666... in the aggregator, 66.7 on the
	// wire. Scores 10, -2 and 0 average to 2.7.
	scores := []int{10, -2, 0}
	for i, win := range []bool{true, true, false} {
		rr := ts.do(t, "POST", "/game-records", tracker.NewGameRecord{
			GameID:  game.ID,
			Date:    "2025-06-14",
			Results: []tracker.NewGameResult{{PlayerID: player.ID, Score: scores[i], IsWinner: win}},
		})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := ts.do(t, "GET", "/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	global := decode[stats.GlobalStats](t, rr)
	require.Len(t, global.TopWinners, 1)
	assert.Equal(t, 66.7, global.TopWinners[0].WinRate)

	rr = ts.do(t, "GET", fmt.Sprintf("/stats/player/%d", player.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	playerStats := decode[stats.PlayerStats](t, rr)
	assert.Equal(t, 66.7, playerStats.WinRate)

	rr = ts.do(t, "GET", fmt.Sprintf("/players/%d", player.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	detail := decode[struct {
		Stats stats.PlayerStats `json:"stats"`
	}](t, rr)
	assert.Equal(t, 66.7, detail.Stats.WinRate)

	rr = ts.do(t, "GET", fmt.Sprintf("/games/%d", game.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	gameView := decode[struct {
		Stats stats.GameStats `json:"stats"`
	}](t, rr)
	assert.Equal(t, 66.7, gameView.Stats.WinRate)
	assert.Equal(t, 2.7, gameView.Stats.AverageScore)
	require.Len(t, gameView.Stats.PerPlayer, 1)
	assert.Equal(t, 66.7, gameView.Stats.PerPlayer[0].WinRate)
}

func TestStatsOnEmptyStore(t *testing.T) {
	ts := setupTestServer(t)
	rr := ts.do(t, "GET", "/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	global := decode[stats.GlobalStats](t, rr)
	assert.Empty(t, global.TopWinners)
	assert.Empty(t, global.PopularGames)
}

func TestProcessEndpointDrivesRecords(t *testing.T) {
	ts := setupTestServer(t)
	game := ts.createGame(t, "Catan")

	body := tracker.NewGameRecord{
		GameID:  game.ID,
		Date:    "2023-01-01",
		Results: []tracker.NewGameResult{{PlayerName: "Guest", IsWinner: true}},
	}
	rr := ts.do(t, "POST", "/game-records", body)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.do(t, "POST", "/process", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	// The record is historic, so no notification goes out.
	assert.Empty(t, ts.notifier.SendResultNotificationCalls)
}

func TestClearEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	ts.createPlayer(t, "Alice")

	rr := ts.do(t, "POST", "/clear", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, "GET", "/players", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]tracker.Player](t, rr))
}

func TestLeaderboardCommand(t *testing.T) {
	ts := setupTestServer(t)
	ts.notifier.FormatLeaderboardResponseFunc = func(winners []stats.WinnerRow) (any, error) {
		return slack.NewBlockMessage(), nil
	}
	rr := ts.do(t, "POST", "/slack/command/leaderboard", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	rr := ts.do(t, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
