package database_test

import (
	"testing"

	"github.com/meeplemeet/meeplemeet/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDBAppliesMigrations(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()

	for _, table := range []string{"players", "games", "meetings", "meeting_participants", "game_records", "game_results"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, "expected table %s to exist", table)
		assert.Equal(t, table, name)
	}
}

func TestInitDBIsIdempotent(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()

	// Running migrations again on the same connection must be a no-op.
	_, err = db.Exec("INSERT INTO players (name) VALUES ('Morten')")
	require.NoError(t, err)
}
