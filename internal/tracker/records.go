package tracker

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/meeplemeet/meeplemeet/internal/identity"
)

// CreateGameRecord writes a game record and all its results in one
// transaction. A zero GameID with NewGame set creates the game inline.
// Result identities are resolved before anything touches the database so
// a bad row never leaves a partial record behind.
func (s *store) CreateGameRecord(rec NewGameRecord) (GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(rec.Results) == 0 {
		return GameRecord{}, ErrNoResults
	}
	if strings.TrimSpace(rec.Date) == "" {
		return GameRecord{}, ErrMissingDate
	}

	identities := make([]identity.Identity, len(rec.Results))
	for i, r := range rec.Results {
		ident, err := identity.Resolve(r.PlayerID, r.PlayerName)
		if err != nil {
			return GameRecord{}, fmt.Errorf("result %d: %w", i, err)
		}
		identities[i] = ident
	}

	tx, err := s.db.Begin()
	if err != nil {
		return GameRecord{}, err
	}

	gameID := rec.GameID
	gameName := ""
	if gameID == 0 && rec.NewGame != nil {
		game, err := createGameTx(tx, *rec.NewGame)
		if err != nil {
			tx.Rollback()
			return GameRecord{}, err
		}
		gameID = game.ID
		gameName = game.Name
		log.Info("Created game inline with record", "gameID", gameID, "name", gameName)
	} else {
		err := tx.QueryRow("SELECT name FROM games WHERE id = ?", gameID).Scan(&gameName)
		if err == sql.ErrNoRows {
			tx.Rollback()
			return GameRecord{}, &NotFoundError{Entity: "game", ID: gameID}
		}
		if err != nil {
			tx.Rollback()
			return GameRecord{}, fmt.Errorf("failed to query game %d: %w", gameID, err)
		}
	}

	if rec.MeetingID != nil {
		found, err := exists(tx, "meetings", *rec.MeetingID)
		if err != nil {
			tx.Rollback()
			return GameRecord{}, err
		}
		if !found {
			tx.Rollback()
			return GameRecord{}, &NotFoundError{Entity: "meeting", ID: *rec.MeetingID}
		}
	}

	playerNames := make(map[int64]string)
	for _, ident := range identities {
		if !ident.IsRegistered() {
			continue
		}
		var name string
		err := tx.QueryRow("SELECT name FROM players WHERE id = ?", ident.PlayerID).Scan(&name)
		if err == sql.ErrNoRows {
			tx.Rollback()
			return GameRecord{}, &NotFoundError{Entity: "player", ID: ident.PlayerID}
		}
		if err != nil {
			tx.Rollback()
			return GameRecord{}, fmt.Errorf("failed to query player %d: %w", ident.PlayerID, err)
		}
		playerNames[ident.PlayerID] = name
	}

	res, err := tx.Exec(
		"INSERT INTO game_records (game_id, meeting_id, date, processing_status) VALUES (?, ?, ?, ?)",
		gameID, rec.MeetingID, rec.Date, StatusNew,
	)
	if err != nil {
		tx.Rollback()
		return GameRecord{}, fmt.Errorf("failed to insert game record: %w", err)
	}
	recordID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return GameRecord{}, err
	}

	record := GameRecord{
		ID:               recordID,
		GameID:           gameID,
		GameName:         gameName,
		MeetingID:        rec.MeetingID,
		Date:             rec.Date,
		ProcessingStatus: StatusNew,
		Results:          make([]GameResult, 0, len(rec.Results)),
	}

	for i, r := range rec.Results {
		ident := identities[i]
		var (
			playerID   any
			playerName any
		)
		if ident.IsRegistered() {
			playerID = ident.PlayerID
		} else {
			playerName = ident.Name
		}
		res, err := tx.Exec(
			"INSERT INTO game_results (game_record_id, player_id, player_name, score, is_winner) VALUES (?, ?, ?, ?, ?)",
			recordID, playerID, playerName, r.Score, r.IsWinner,
		)
		if err != nil {
			tx.Rollback()
			return GameRecord{}, fmt.Errorf("failed to insert result %d: %w", i, err)
		}
		resultID, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return GameRecord{}, err
		}
		result := GameResult{
			ID:           resultID,
			GameRecordID: recordID,
			Score:        r.Score,
			IsWinner:     r.IsWinner,
		}
		if ident.IsRegistered() {
			id := ident.PlayerID
			result.PlayerID = &id
			result.ResolvedName = playerNames[id]
		} else {
			result.PlayerName = ident.Name
			result.ResolvedName = ident.Name
		}
		record.Results = append(record.Results, result)
	}

	if err := tx.Commit(); err != nil {
		return GameRecord{}, err
	}
	log.Info("Created game record", "recordID", recordID, "gameID", gameID, "results", len(record.Results))
	return record, nil
}

func (s *store) GetGameRecord(id int64) (GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.queryRecords("WHERE r.id = ?", id)
	if err != nil {
		return GameRecord{}, err
	}
	if len(records) == 0 {
		return GameRecord{}, &NotFoundError{Entity: "game record", ID: id}
	}
	return records[0], nil
}

func (s *store) ListMeetingRecords(meetingID int64) ([]GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found, err := exists(s.db, "meetings", meetingID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &NotFoundError{Entity: "meeting", ID: meetingID}
	}
	return s.listMeetingRecordsLocked(meetingID)
}

func (s *store) listMeetingRecordsLocked(meetingID int64) ([]GameRecord, error) {
	return s.queryRecords("WHERE r.meeting_id = ?", meetingID)
}

// RecordsForProcessing returns all records that have not finished the
// processing pipeline, oldest first.
func (s *store) RecordsForProcessing() ([]GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryRecords("WHERE r.processing_status != ?", StatusCompleted)
}

// queryRecords loads records matching the given WHERE clause, each with
// its results in insertion order.
func (s *store) queryRecords(where string, args ...any) ([]GameRecord, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.game_id, g.name, r.meeting_id, r.date, r.processing_status
		FROM game_records r
		JOIN games g ON r.game_id = g.id
		`+where+`
		ORDER BY r.id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query game records: %w", err)
	}
	defer rows.Close()

	records := []GameRecord{}
	for rows.Next() {
		var (
			r         GameRecord
			meetingID sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.GameID, &r.GameName, &meetingID, &r.Date, &r.ProcessingStatus); err != nil {
			log.Error("Failed to scan game record row", "error", err)
			continue
		}
		if meetingID.Valid {
			id := meetingID.Int64
			r.MeetingID = &id
		}
		r.Results = []GameResult{}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		results, err := s.queryResults(records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Results = results
	}
	return records, nil
}

func (s *store) queryResults(recordID int64) ([]GameResult, error) {
	rows, err := s.db.Query(`
		SELECT gr.id, gr.game_record_id, gr.player_id, gr.player_name, gr.score, gr.is_winner,
			COALESCE(p.name, TRIM(COALESCE(gr.player_name, '')))
		FROM game_results gr
		LEFT JOIN players p ON gr.player_id = p.id
		WHERE gr.game_record_id = ?
		ORDER BY gr.id
	`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results for record %d: %w", recordID, err)
	}
	defer rows.Close()

	results := []GameResult{}
	for rows.Next() {
		var (
			r        GameResult
			playerID sql.NullInt64
			name     sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.GameRecordID, &playerID, &name, &r.Score, &r.IsWinner, &r.ResolvedName); err != nil {
			log.Error("Failed to scan game result row", "error", err)
			continue
		}
		if playerID.Valid {
			id := playerID.Int64
			r.PlayerID = &id
		}
		r.PlayerName = name.String
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *store) UpdateProcessingStatus(recordID int64, status ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE game_records SET processing_status = ? WHERE id = ?", status, recordID)
	if err != nil {
		return fmt.Errorf("failed to update processing status for record %d: %w", recordID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &NotFoundError{Entity: "game record", ID: recordID}
	}
	log.Info("Updated record processing status", "recordID", recordID, "status", status)
	return nil
}

// UnregisteredResults returns the unclaimed results recorded under the
// given display name. The lookup trims surrounding whitespace on both
// sides of the comparison.
func (s *store) UnregisteredResults(name string) ([]GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, game_record_id, player_id, player_name, score, is_winner
		FROM game_results
		WHERE player_id IS NULL AND TRIM(player_name) = ?
		ORDER BY id
	`, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("failed to query unregistered results for %q: %w", name, err)
	}
	defer rows.Close()

	results := []GameResult{}
	for rows.Next() {
		var (
			r        GameResult
			playerID sql.NullInt64
			rowName  sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.GameRecordID, &playerID, &rowName, &r.Score, &r.IsWinner); err != nil {
			log.Error("Failed to scan unregistered result row", "error", err)
			continue
		}
		r.PlayerName = rowName.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// ClaimResults re-points the given unregistered results at the player and
// reports how many rows actually changed hands. Results that are missing
// or already claimed are skipped, which makes a replay of the same claim
// a no-op.
func (s *store) ClaimResults(playerID int64, resultIDs []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(resultIDs) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?, ", len(resultIDs)-1) + "?"
	args := make([]any, 0, len(resultIDs)+1)
	args = append(args, playerID)
	for _, id := range resultIDs {
		args = append(args, id)
	}

	res, err := s.db.Exec(`
		UPDATE game_results
		SET player_id = ?, player_name = NULL
		WHERE id IN (`+placeholders+`) AND player_id IS NULL
	`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to claim results for player %d: %w", playerID, err)
	}
	claimed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Info("Claimed results", "playerID", playerID, "requested", len(resultIDs), "claimed", claimed)
	return claimed, nil
}

// ResultRows returns the flattened result join the aggregator consumes.
func (s *store) ResultRows() ([]ResultRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT gr.id, r.id, r.game_id, g.name, r.meeting_id, gr.player_id, TRIM(COALESCE(gr.player_name, '')), gr.score, gr.is_winner
		FROM game_results gr
		JOIN game_records r ON gr.game_record_id = r.id
		JOIN games g ON r.game_id = g.id
		ORDER BY gr.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query result rows: %w", err)
	}
	defer rows.Close()

	out := []ResultRow{}
	for rows.Next() {
		var (
			row       ResultRow
			meetingID sql.NullInt64
			playerID  sql.NullInt64
		)
		if err := rows.Scan(&row.ResultID, &row.RecordID, &row.GameID, &row.GameName, &meetingID, &playerID, &row.PlayerName, &row.Score, &row.IsWinner); err != nil {
			log.Error("Failed to scan result row", "error", err)
			continue
		}
		if meetingID.Valid {
			id := meetingID.Int64
			row.MeetingID = &id
		}
		if playerID.Valid {
			id := playerID.Int64
			row.PlayerID = &id
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// AttendanceRows returns the confirmed participant rows across all
// meetings.
func (s *store) AttendanceRows() ([]AttendanceRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT meeting_id, player_id FROM meeting_participants WHERE status = 'confirmed' ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance rows: %w", err)
	}
	defer rows.Close()

	out := []AttendanceRow{}
	for rows.Next() {
		var row AttendanceRow
		if err := rows.Scan(&row.MeetingID, &row.PlayerID); err != nil {
			log.Error("Failed to scan attendance row", "error", err)
			continue
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *store) PlayerRefs() ([]PlayerRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name FROM players ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query player refs: %w", err)
	}
	defer rows.Close()

	out := []PlayerRef{}
	for rows.Next() {
		var ref PlayerRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			log.Error("Failed to scan player ref", "error", err)
			continue
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (s *store) GameRefs() ([]GameRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name FROM games ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query game refs: %w", err)
	}
	defer rows.Close()

	out := []GameRef{}
	for rows.Next() {
		var ref GameRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			log.Error("Failed to scan game ref", "error", err)
			continue
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}
