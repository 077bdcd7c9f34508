package notifier

import (
	"github.com/meeplemeet/meeplemeet/internal/stats"
	"github.com/meeplemeet/meeplemeet/internal/tracker"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For newly scheduled meetings
	SendMeetingNotification(meeting tracker.Meeting, dryRun bool) error
	// For freshly recorded game results
	SendResultNotification(record tracker.GameRecord, dryRun bool) error
	// For the leaderboard slash command
	SendLeaderboard(winners []stats.WinnerRow, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(winners []stats.WinnerRow) (any, error)
}
