package processor

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/meeplemeet/meeplemeet/internal/metrics"
	"github.com/meeplemeet/meeplemeet/internal/pubsub"
	"github.com/meeplemeet/meeplemeet/internal/tracker"
)

// New creates a new Processor.
func New(store Store, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		store:    store,
		pubsub:   pubsub,
		notifier: notifier,
		metrics:  metrics,
		now:      time.Now,
	}
}

// ProcessRecords fetches game records that need processing and advances
// them through the state machine.
func (p *Processor) ProcessRecords(dryRun bool) {
	log.Info("Starting record processing...")
	records, err := p.store.RecordsForProcessing()
	if err != nil {
		log.Error("Failed to get records for processing", "error", err)
		return
	}

	if len(records) == 0 {
		log.Info("No records to process.")
		return
	}

	log.Info("Found records to process", "count", len(records))
	for i := range records {
		startTime := p.now()
		p.processRecord(&records[i], dryRun)
		p.metrics.ObserveProcessingDuration(time.Since(startTime).Seconds())
	}
	log.Info("Record processing finished.")
}

func (p *Processor) processRecord(record *tracker.GameRecord, dryRun bool) {
	log.Info("Processing record", "recordID", record.ID, "initial_status", record.ProcessingStatus)
	for {
		currentState := record.ProcessingStatus
		log.Debug("Evaluating record state", "recordID", record.ID, "status", currentState)

		switch currentState {
		case tracker.StatusNew:
			// Historic imports stay silent: only records played within the
			// last day get a result announcement.
			if p.isFresh(record.Date) {
				log.Info("Record is new. Sending result notification.", "recordID", record.ID)
				if err := p.notifier.SendResultNotification(*record, dryRun); err != nil {
					log.Error("Failed to send result notification", "error", err, "recordID", record.ID)
					return
				}
			} else {
				log.Info("Record is historic. Skipping result notification.", "recordID", record.ID, "date", record.Date)
			}
			p.updateStatus(record, tracker.StatusResultNotified, dryRun)

		case tracker.StatusResultNotified:
			log.Info("Record result has been notified. Marking record as complete.", "recordID", record.ID)
			if !dryRun {
				p.pubsub.SendMessage(pubsub.EventRecordProcessed, pubsub.RecordProcessedEvent{RecordID: record.ID, GameID: record.GameID})
			}
			p.updateStatus(record, tracker.StatusCompleted, dryRun)

		case tracker.StatusCompleted:
			log.Debug("Record is complete. No further processing needed.", "recordID", record.ID)
			return // End of the line for this record

		default:
			log.Warn("Unknown processing status", "status", currentState, "recordID", record.ID)
			return
		}

		// If the status hasn't changed, we're done with this record for now.
		if record.ProcessingStatus == currentState {
			log.Debug("Record state did not change. Finished processing for now.", "recordID", record.ID, "status", currentState)
			break
		}
	}
	log.Info("Finished processing record", "recordID", record.ID, "final_status", record.ProcessingStatus)
}

// isFresh reports whether the record's date falls within the last 24
// hours. Dates that cannot be parsed count as historic.
func (p *Processor) isFresh(date string) bool {
	played, err := time.Parse(time.RFC3339, date)
	if err != nil {
		played, err = time.Parse("2006-01-02", date)
	}
	if err != nil {
		return false
	}
	age := p.now().Sub(played)
	return age < 24*time.Hour
}

func (p *Processor) updateStatus(record *tracker.GameRecord, newStatus tracker.ProcessingStatus, dryRun bool) {
	if dryRun {
		log.Info("[Dry Run] Would update record status", "recordID", record.ID, "from", record.ProcessingStatus, "to", newStatus)
		record.ProcessingStatus = newStatus // Update in-memory for the loop
		return
	}

	err := p.store.UpdateProcessingStatus(record.ID, newStatus)
	if err != nil {
		log.Error("Failed to update processing status", "error", err, "recordID", record.ID)
	} else {
		log.Debug("Successfully updated status", "recordID", record.ID, "from", record.ProcessingStatus, "to", newStatus)
		record.ProcessingStatus = newStatus // Keep the in-memory object in sync
	}
}
