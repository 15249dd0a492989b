package contracts

import "time"

// ISessionStats accumulates per-session compile accounting.
type ISessionStats interface {
	RecordAttempt(succeeded bool, duration time.Duration)
	RecordLine()
	RecordDiagnostic()
	RecordCacheHit()
	GetCurrentUsage() (attempts int, succeeded int, failed int, lines int, diagnostics int)
	DisplayStats()
	ClearStats()
}
