package main

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"DB_NAME"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}

	// Optional remote primary; the seeder writes straight to it when set.
	config["TURSO_PRIMARY_URL"] = os.Getenv("TURSO_PRIMARY_URL")
	config["TURSO_AUTH_TOKEN"] = os.Getenv("TURSO_AUTH_TOKEN")
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	driver, dbURL := "sqlite3", cfg["DB_NAME"]
	if cfg["TURSO_PRIMARY_URL"] != "" {
		driver = "libsql"
		dbURL = fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	}
	db, err := sql.Open(driver, dbURL)
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %s", err)
	}

	log.Info("Successfully connected to the database.")

	playerNames := []string{"Seeder Player A", "Seeder Player B", "Seeder Player C", "Seeder Player D"}
	playerIDs := make([]int64, 0, len(playerNames))
	for i, name := range playerNames {
		id := int64(i + 1)
		_, err := db.Exec("INSERT OR IGNORE INTO players (id, name) VALUES (?, ?)", id, name)
		if err != nil {
			log.Fatalf("Failed to insert dummy player %s: %s", name, err)
		}
		playerIDs = append(playerIDs, id)
	}
	log.Info("Ensured dummy players exist.")

	gameNames := []string{"Catan", "Azul", "Brass: Birmingham", "Wingspan"}
	gameIDs := make([]int64, 0, len(gameNames))
	for i, name := range gameNames {
		id := int64(i + 1)
		_, err := db.Exec("INSERT OR IGNORE INTO games (id, name, min_players, max_players) VALUES (?, ?, ?, ?)", id, name, 2, 4)
		if err != nil {
			log.Fatalf("Failed to insert dummy game %s: %s", name, err)
		}
		gameIDs = append(gameIDs, id)
	}
	log.Info("Ensured dummy games exist.")

	const numMeetings = 10
	meetingIDs := make([]int64, 0, numMeetings)
	for i := 0; i < numMeetings; i++ {
		id := int64(i + 1)
		date := time.Now().Add(-time.Duration(i*7*24) * time.Hour).Format("2006-01-02")
		_, err := db.Exec(
			"INSERT OR IGNORE INTO meetings (id, date, location, description, host_id) VALUES (?, ?, ?, ?, ?)",
			id, date, "Seeded Game Cafe", "Seeded weekly meetup", playerIDs[i%len(playerIDs)],
		)
		if err != nil {
			log.Fatalf("Failed to insert dummy meeting: %s", err)
		}
		meetingIDs = append(meetingIDs, id)
	}
	log.Info("Ensured dummy meetings exist.")

	const batchSize = 100
	const numRecords = 10000
	const resultsPerRecord = 4

	// Guests get a per-run tag so repeated seeds stay distinguishable.
	guestTag := uuid.NewString()[:8]

	log.Info("Preparing to insert dummy game records...", "total", numRecords, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	// Record ids are assigned up front so the result rows can reference them
	// inside the same batch.
	var maxRecordID sql.NullInt64
	if err := tx.QueryRow("SELECT MAX(id) FROM game_records").Scan(&maxRecordID); err != nil {
		tx.Rollback()
		log.Fatalf("Failed to read max record id: %s", err)
	}
	nextRecordID := maxRecordID.Int64 + 1

	recordValues := make([]string, 0, batchSize)
	recordArgs := make([]interface{}, 0, batchSize*5)
	resultValues := make([]string, 0, batchSize*resultsPerRecord)
	resultArgs := make([]interface{}, 0, batchSize*resultsPerRecord*5)

	for i := 0; i < numRecords; i++ {
		recordID := nextRecordID + int64(i)
		playedAt := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)

		recordValues = append(recordValues, "(?, ?, ?, ?, ?)")
		recordArgs = append(recordArgs,
			recordID,
			gameIDs[rand.Intn(len(gameIDs))],
			meetingIDs[rand.Intn(len(meetingIDs))],
			playedAt.Format(time.RFC3339),
			"COMPLETED",
		)

		winner := rand.Intn(resultsPerRecord)
		for j := 0; j < resultsPerRecord; j++ {
			won := 0
			if j == winner {
				won = 1
			}
			resultValues = append(resultValues, "(?, ?, ?, ?, ?)")
			if j < 3 {
				resultArgs = append(resultArgs, recordID, playerIDs[j], nil, rand.Intn(100), won)
			} else {
				resultArgs = append(resultArgs, recordID, nil, fmt.Sprintf("Guest %s", guestTag), rand.Intn(100), won)
			}
		}

		if (i+1)%batchSize == 0 || (i+1) == numRecords {
			recordStmt := fmt.Sprintf(`
				INSERT INTO game_records (id, game_id, meeting_id, date, processing_status)
				VALUES %s;`, strings.Join(recordValues, ","))
			if _, err := tx.Exec(recordStmt, recordArgs...); err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute record batch insert: %s", err)
			}

			resultStmt := fmt.Sprintf(`
				INSERT INTO game_results (game_record_id, player_id, player_name, score, is_winner)
				VALUES %s;`, strings.Join(resultValues, ","))
			if _, err := tx.Exec(resultStmt, resultArgs...); err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute result batch insert: %s", err)
			}

			// Reset for the next batch
			recordValues = make([]string, 0, batchSize)
			recordArgs = make([]interface{}, 0, batchSize*5)
			resultValues = make([]string, 0, batchSize*resultsPerRecord)
			resultArgs = make([]interface{}, 0, batchSize*resultsPerRecord*5)
			log.Info("Inserted batch", "completed", i+1, "total", numRecords)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy game records.", "duration", duration)
}
