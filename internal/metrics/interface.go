package metrics

// Metrics defines the instrumentation points the rest of the application
// records against.
type Metrics interface {
	IncRecordsCreated()
	IncClaimsProcessed()
	AddResultsClaimed(count float64)
	IncStatsRequests()
	ObserveProcessingDuration(duration float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
