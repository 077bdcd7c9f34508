package processor

import (
	"github.com/meeplemeet/meeplemeet/internal/notifier"
	"github.com/meeplemeet/meeplemeet/internal/tracker"
)

// Store defines the database operations required by the processor.
type Store interface {
	RecordsForProcessing() ([]tracker.GameRecord, error)
	UpdateProcessingStatus(recordID int64, status tracker.ProcessingStatus) error
}

// Notifier defines the notification operations required by the processor.
// This is now an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
