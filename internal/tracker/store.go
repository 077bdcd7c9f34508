package tracker

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
)

// New creates a new Store backed by the given database.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func exists(q rowQuerier, table string, id int64) (bool, error) {
	var found bool
	err := q.QueryRow("SELECT EXISTS(SELECT 1 FROM "+table+" WHERE id = ?)", id).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("failed to check %s %d: %w", table, id, err)
	}
	return found, nil
}

func (s *store) CreatePlayer(form PlayerForm) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		"INSERT INTO players (name, birth_year, mbti, location) VALUES (?, ?, ?, ?)",
		form.Name, form.BirthYear, nullIfEmpty(form.MBTI), nullIfEmpty(form.Location),
	)
	if err != nil {
		return Player{}, fmt.Errorf("failed to insert player: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Player{}, err
	}
	log.Info("Added new player", "playerID", id, "name", form.Name)
	return Player{ID: id, Name: form.Name, BirthYear: form.BirthYear, MBTI: form.MBTI, Location: form.Location}, nil
}

func (s *store) GetPlayer(id int64) (Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getPlayerLocked(id)
}

func (s *store) getPlayerLocked(id int64) (Player, error) {
	var (
		p         Player
		birthYear sql.NullInt64
		mbti      sql.NullString
		location  sql.NullString
	)
	err := s.db.QueryRow("SELECT id, name, birth_year, mbti, location FROM players WHERE id = ?", id).
		Scan(&p.ID, &p.Name, &birthYear, &mbti, &location)
	if err == sql.ErrNoRows {
		return Player{}, &NotFoundError{Entity: "player", ID: id}
	}
	if err != nil {
		return Player{}, fmt.Errorf("failed to query player %d: %w", id, err)
	}
	if birthYear.Valid {
		year := int(birthYear.Int64)
		p.BirthYear = &year
	}
	p.MBTI = mbti.String
	p.Location = location.String
	return p, nil
}

func (s *store) UpdatePlayer(id int64, form PlayerForm) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := exists(s.db, "players", id)
	if err != nil {
		return Player{}, err
	}
	if !found {
		return Player{}, &NotFoundError{Entity: "player", ID: id}
	}

	_, err = s.db.Exec(
		"UPDATE players SET name = ?, birth_year = ?, mbti = ?, location = ? WHERE id = ?",
		form.Name, form.BirthYear, nullIfEmpty(form.MBTI), nullIfEmpty(form.Location), id,
	)
	if err != nil {
		return Player{}, fmt.Errorf("failed to update player %d: %w", id, err)
	}
	log.Info("Updated player", "playerID", id, "name", form.Name)
	return Player{ID: id, Name: form.Name, BirthYear: form.BirthYear, MBTI: form.MBTI, Location: form.Location}, nil
}

// DeletePlayer removes a player along with their results and participant
// rows. A player who still hosts meetings cannot be deleted.
func (s *store) DeletePlayer(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := exists(s.db, "players", id)
	if err != nil {
		return err
	}
	if !found {
		return &NotFoundError{Entity: "player", ID: id}
	}

	var hosted int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM meetings WHERE host_id = ?", id).Scan(&hosted); err != nil {
		return fmt.Errorf("failed to count hosted meetings: %w", err)
	}
	if hosted > 0 {
		return &ConflictError{Reason: fmt.Sprintf("player %d still hosts %d meeting(s)", id, hosted)}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM game_results WHERE player_id = ?", id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete results for player %d: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM meeting_participants WHERE player_id = ?", id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete participant rows for player %d: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM players WHERE id = ?", id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete player %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Deleted player", "playerID", id)
	return nil
}

func (s *store) ListPlayers() ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, birth_year, mbti, location FROM players ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		var (
			p         Player
			birthYear sql.NullInt64
			mbti      sql.NullString
			location  sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &birthYear, &mbti, &location); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		if birthYear.Valid {
			year := int(birthYear.Int64)
			p.BirthYear = &year
		}
		p.MBTI = mbti.String
		p.Location = location.String
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *store) PlayerExists(id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return exists(s.db, "players", id)
}

func (s *store) PlayerHistory(playerID int64) ([]HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT gr.id, r.game_id, g.name, gr.score, gr.is_winner, r.meeting_id, m.date, m.location
		FROM game_results gr
		JOIN game_records r ON gr.game_record_id = r.id
		JOIN games g ON r.game_id = g.id
		LEFT JOIN meetings m ON r.meeting_id = m.id
		WHERE gr.player_id = ?
		ORDER BY gr.id
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for player %d: %w", playerID, err)
	}
	defer rows.Close()

	history := []HistoryEntry{}
	for rows.Next() {
		var (
			h           HistoryEntry
			meetingID   sql.NullInt64
			meetingDate sql.NullString
			meetingLoc  sql.NullString
		)
		if err := rows.Scan(&h.ResultID, &h.GameID, &h.GameName, &h.Score, &h.IsWinner, &meetingID, &meetingDate, &meetingLoc); err != nil {
			log.Error("Failed to scan history row", "error", err)
			continue
		}
		if meetingID.Valid {
			id := meetingID.Int64
			h.MeetingID = &id
			h.MeetingDate = meetingDate.String
			h.MeetingLocation = meetingLoc.String
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func (s *store) CreateGame(form GameForm) (Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return Game{}, err
	}
	game, err := createGameTx(tx, form)
	if err != nil {
		tx.Rollback()
		return Game{}, err
	}
	if err := tx.Commit(); err != nil {
		return Game{}, err
	}
	log.Info("Added new game", "gameID", game.ID, "name", game.Name)
	return game, nil
}

func createGameTx(tx *sql.Tx, form GameForm) (Game, error) {
	minPlayers := form.MinPlayers
	if minPlayers == 0 {
		minPlayers = 2
	}
	maxPlayers := form.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = 4
	}
	res, err := tx.Exec(
		"INSERT INTO games (name, min_players, max_players, description) VALUES (?, ?, ?, ?)",
		form.Name, minPlayers, maxPlayers, nullIfEmpty(form.Description),
	)
	if err != nil {
		return Game{}, fmt.Errorf("failed to insert game: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Game{}, err
	}
	return Game{ID: id, Name: form.Name, MinPlayers: minPlayers, MaxPlayers: maxPlayers, Description: form.Description}, nil
}

func (s *store) GetGame(id int64) (Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		g    Game
		desc sql.NullString
	)
	err := s.db.QueryRow("SELECT id, name, min_players, max_players, description FROM games WHERE id = ?", id).
		Scan(&g.ID, &g.Name, &g.MinPlayers, &g.MaxPlayers, &desc)
	if err == sql.ErrNoRows {
		return Game{}, &NotFoundError{Entity: "game", ID: id}
	}
	if err != nil {
		return Game{}, fmt.Errorf("failed to query game %d: %w", id, err)
	}
	g.Description = desc.String
	return g, nil
}

func (s *store) UpdateGame(id int64, form GameForm) (Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := exists(s.db, "games", id)
	if err != nil {
		return Game{}, err
	}
	if !found {
		return Game{}, &NotFoundError{Entity: "game", ID: id}
	}

	minPlayers := form.MinPlayers
	if minPlayers == 0 {
		minPlayers = 2
	}
	maxPlayers := form.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = 4
	}
	_, err = s.db.Exec(
		"UPDATE games SET name = ?, min_players = ?, max_players = ?, description = ? WHERE id = ?",
		form.Name, minPlayers, maxPlayers, nullIfEmpty(form.Description), id,
	)
	if err != nil {
		return Game{}, fmt.Errorf("failed to update game %d: %w", id, err)
	}
	log.Info("Updated game", "gameID", id, "name", form.Name)
	return Game{ID: id, Name: form.Name, MinPlayers: minPlayers, MaxPlayers: maxPlayers, Description: form.Description}, nil
}

func (s *store) ListGames() ([]Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, min_players, max_players, description FROM games ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	games := []Game{}
	for rows.Next() {
		var (
			g    Game
			desc sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.MinPlayers, &g.MaxPlayers, &desc); err != nil {
			log.Error("Failed to scan game row", "error", err)
			continue
		}
		g.Description = desc.String
		games = append(games, g)
	}
	return games, rows.Err()
}

func (s *store) CreateMeeting(form MeetingForm) (Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	host, err := s.getPlayerLocked(form.HostID)
	if err != nil {
		return Meeting{}, err
	}

	res, err := s.db.Exec(
		"INSERT INTO meetings (date, location, description, host_id) VALUES (?, ?, ?, ?)",
		form.Date, form.Location, nullIfEmpty(form.Description), form.HostID,
	)
	if err != nil {
		return Meeting{}, fmt.Errorf("failed to insert meeting: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Meeting{}, err
	}
	log.Info("Added new meeting", "meetingID", id, "date", form.Date, "location", form.Location)
	return Meeting{
		ID:          id,
		Date:        form.Date,
		Location:    form.Location,
		Description: form.Description,
		HostID:      form.HostID,
		Host:        &PlayerRef{ID: host.ID, Name: host.Name},
	}, nil
}

func (s *store) GetMeeting(id int64) (MeetingDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meeting, err := s.getMeetingLocked(id)
	if err != nil {
		return MeetingDetail{}, err
	}

	participants, err := s.listParticipantsLocked(id)
	if err != nil {
		return MeetingDetail{}, err
	}
	records, err := s.listMeetingRecordsLocked(id)
	if err != nil {
		return MeetingDetail{}, err
	}

	return MeetingDetail{Meeting: meeting, Participants: participants, GameRecords: records}, nil
}

func (s *store) getMeetingLocked(id int64) (Meeting, error) {
	var (
		m        Meeting
		desc     sql.NullString
		hostID   sql.NullInt64
		hostName sql.NullString
	)
	err := s.db.QueryRow(`
		SELECT m.id, m.date, m.location, m.description, m.host_id, p.name,
			(SELECT COUNT(*) FROM game_records r WHERE r.meeting_id = m.id),
			(SELECT COUNT(*) FROM meeting_participants mp WHERE mp.meeting_id = m.id AND mp.status = 'confirmed'),
			(SELECT COUNT(DISTINCT TRIM(gr.player_name)) FROM game_results gr
				JOIN game_records r2 ON gr.game_record_id = r2.id
				WHERE r2.meeting_id = m.id AND gr.player_id IS NULL)
		FROM meetings m
		LEFT JOIN players p ON m.host_id = p.id
		WHERE m.id = ?
	`, id).Scan(&m.ID, &m.Date, &m.Location, &desc, &hostID, &hostName, &m.GameCount, &m.ParticipantCount, &m.UnregisteredCount)
	if err == sql.ErrNoRows {
		return Meeting{}, &NotFoundError{Entity: "meeting", ID: id}
	}
	if err != nil {
		return Meeting{}, fmt.Errorf("failed to query meeting %d: %w", id, err)
	}
	m.Description = desc.String
	if hostID.Valid {
		m.HostID = hostID.Int64
		m.Host = &PlayerRef{ID: hostID.Int64, Name: hostName.String}
	}
	return m, nil
}

func (s *store) listParticipantsLocked(meetingID int64) ([]Participant, error) {
	rows, err := s.db.Query(`
		SELECT mp.id, mp.player_id, p.name, mp.arrival_time, mp.status
		FROM meeting_participants mp
		JOIN players p ON mp.player_id = p.id
		WHERE mp.meeting_id = ?
		ORDER BY mp.id
	`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for meeting %d: %w", meetingID, err)
	}
	defer rows.Close()

	participants := []Participant{}
	for rows.Next() {
		var (
			p       Participant
			arrival sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Player.ID, &p.Player.Name, &arrival, &p.Status); err != nil {
			log.Error("Failed to scan participant row", "error", err)
			continue
		}
		p.ArrivalTime = arrival.String
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (s *store) UpdateMeeting(id int64, form MeetingForm) (Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getMeetingLocked(id); err != nil {
		return Meeting{}, err
	}
	host, err := s.getPlayerLocked(form.HostID)
	if err != nil {
		return Meeting{}, err
	}

	_, err = s.db.Exec(
		"UPDATE meetings SET date = ?, location = ?, description = ?, host_id = ? WHERE id = ?",
		form.Date, form.Location, nullIfEmpty(form.Description), form.HostID, id,
	)
	if err != nil {
		return Meeting{}, fmt.Errorf("failed to update meeting %d: %w", id, err)
	}
	log.Info("Updated meeting", "meetingID", id)
	return Meeting{
		ID:          id,
		Date:        form.Date,
		Location:    form.Location,
		Description: form.Description,
		HostID:      form.HostID,
		Host:        &PlayerRef{ID: host.ID, Name: host.Name},
	}, nil
}

// DeleteMeeting removes a meeting and its participant rows. Game records
// played at the meeting are kept as standalone records so history survives.
func (s *store) DeleteMeeting(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := exists(s.db, "meetings", id)
	if err != nil {
		return err
	}
	if !found {
		return &NotFoundError{Entity: "meeting", ID: id}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE game_records SET meeting_id = NULL WHERE meeting_id = ?", id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to detach records from meeting %d: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM meeting_participants WHERE meeting_id = ?", id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete participants of meeting %d: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM meetings WHERE id = ?", id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete meeting %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Deleted meeting", "meetingID", id)
	return nil
}

func (s *store) ListMeetings() ([]Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT m.id, m.date, m.location, m.description, m.host_id, p.name,
			(SELECT COUNT(*) FROM game_records r WHERE r.meeting_id = m.id),
			(SELECT COUNT(*) FROM meeting_participants mp WHERE mp.meeting_id = m.id AND mp.status = 'confirmed'),
			(SELECT COUNT(DISTINCT TRIM(gr.player_name)) FROM game_results gr
				JOIN game_records r2 ON gr.game_record_id = r2.id
				WHERE r2.meeting_id = m.id AND gr.player_id IS NULL)
		FROM meetings m
		LEFT JOIN players p ON m.host_id = p.id
		ORDER BY m.date DESC, m.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query meetings: %w", err)
	}
	defer rows.Close()

	meetings := []Meeting{}
	for rows.Next() {
		var (
			m        Meeting
			desc     sql.NullString
			hostID   sql.NullInt64
			hostName sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Date, &m.Location, &desc, &hostID, &hostName, &m.GameCount, &m.ParticipantCount, &m.UnregisteredCount); err != nil {
			log.Error("Failed to scan meeting row", "error", err)
			continue
		}
		m.Description = desc.String
		if hostID.Valid {
			m.HostID = hostID.Int64
			m.Host = &PlayerRef{ID: hostID.Int64, Name: hostName.String}
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// UpsertParticipant adds a player to a meeting or updates their arrival
// time and status if they are already on the list.
func (s *store) UpsertParticipant(meetingID int64, form ParticipantForm) (Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := exists(s.db, "meetings", meetingID)
	if err != nil {
		return Participant{}, err
	}
	if !found {
		return Participant{}, &NotFoundError{Entity: "meeting", ID: meetingID}
	}
	player, err := s.getPlayerLocked(form.PlayerID)
	if err != nil {
		return Participant{}, err
	}

	status := form.Status
	if status == "" {
		status = "confirmed"
	}
	_, err = s.db.Exec(`
		INSERT INTO meeting_participants (meeting_id, player_id, arrival_time, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(meeting_id, player_id) DO UPDATE SET
			arrival_time = excluded.arrival_time,
			status = excluded.status
	`, meetingID, form.PlayerID, nullIfEmpty(form.ArrivalTime), status)
	if err != nil {
		return Participant{}, fmt.Errorf("failed to upsert participant: %w", err)
	}

	var id int64
	err = s.db.QueryRow("SELECT id FROM meeting_participants WHERE meeting_id = ? AND player_id = ?", meetingID, form.PlayerID).Scan(&id)
	if err != nil {
		return Participant{}, fmt.Errorf("failed to read back participant: %w", err)
	}
	log.Info("Upserted meeting participant", "meetingID", meetingID, "playerID", form.PlayerID, "status", status)
	return Participant{
		ID:          id,
		Player:      PlayerRef{ID: player.ID, Name: player.Name},
		ArrivalTime: form.ArrivalTime,
		Status:      status,
	}, nil
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"game_results", "game_records", "meeting_participants", "meetings", "games", "players"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
