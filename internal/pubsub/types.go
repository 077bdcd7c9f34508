package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventRecordCreated    EventType = "record-created"
	EventRecordProcessed  EventType = "record-processed"
	EventRecordsClaimed   EventType = "records-claimed"
	EventMeetingScheduled EventType = "meeting-scheduled"
)

// RecordProcessedEvent is published when a record finishes the processing
// pipeline.
type RecordProcessedEvent struct {
	RecordID int64 `msgpack:"record_id"`
	GameID   int64 `msgpack:"game_id"`
}

// RecordCreatedEvent is published after a game record and its results are
// committed.
type RecordCreatedEvent struct {
	RecordID    int64  `msgpack:"record_id"`
	GameID      int64  `msgpack:"game_id"`
	MeetingID   *int64 `msgpack:"meeting_id"`
	ResultCount int    `msgpack:"result_count"`
}

// RecordsClaimedEvent is published after unregistered results are
// re-pointed to a player.
type RecordsClaimedEvent struct {
	PlayerID int64 `msgpack:"player_id"`
	Changed  int64 `msgpack:"changed"`
}

// MeetingScheduledEvent is published after a meeting is created.
type MeetingScheduledEvent struct {
	MeetingID int64  `msgpack:"meeting_id"`
	Date      string `msgpack:"date"`
	Location  string `msgpack:"location"`
}
