package stats

import (
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"github.com/meysamhadeli/kotpad/constants/lipgloss"
	"github.com/meysamhadeli/kotpad/stats/contracts"
)

// sessionStats implementation
type sessionStats struct {
	mu            sync.Mutex
	attempts      int
	succeeded     int
	failed        int
	lines         int
	diagnostics   int
	cacheHits     int
	totalDuration time.Duration
}

// NewSessionStats creates a new session accounting tracker.
func NewSessionStats() contracts.ISessionStats {
	return &sessionStats{}
}

// RecordAttempt accumulates one finished compile attempt.
func (s *sessionStats) RecordAttempt(succeededAttempt bool, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if succeededAttempt {
		s.succeeded++
	} else {
		s.failed++
	}
	s.totalDuration += duration
}

// RecordLine counts one received compile output line.
func (s *sessionStats) RecordLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines++
}

// RecordDiagnostic counts one extracted error location.
func (s *sessionStats) RecordDiagnostic() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagnostics++
}

// RecordCacheHit counts one compile served from the artifact cache.
func (s *sessionStats) RecordCacheHit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheHits++
}

func (s *sessionStats) GetCurrentUsage() (attempts int, succeeded int, failed int, lines int, diagnostics int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts, s.succeeded, s.failed, s.lines, s.diagnostics
}

// DisplayStats renders the session accounting as a table.
func (s *sessionStats) DisplayStats() {
	s.mu.Lock()
	attempts, succeeded, failed := s.attempts, s.succeeded, s.failed
	lines, diagnostics, cacheHits := s.lines, s.diagnostics, s.cacheHits
	total := s.totalDuration
	s.mu.Unlock()

	avg := time.Duration(0)
	if attempts > 0 {
		avg = total / time.Duration(attempts)
	}

	data := pterm.TableData{
		{"Compile attempts", fmt.Sprint(attempts)},
		{"Succeeded", fmt.Sprint(succeeded)},
		{"Failed", fmt.Sprint(failed)},
		{"Cache hits", fmt.Sprint(cacheHits)},
		{"Output lines", fmt.Sprint(lines)},
		{"Diagnostics", fmt.Sprint(diagnostics)},
		{"Avg duration", avg.Round(time.Millisecond).String()},
	}

	if err := pterm.DefaultTable.WithData(data).Render(); err != nil {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Could not render stats: %v", err)))
	}
}

// ClearStats resets all counters to zero.
func (s *sessionStats) ClearStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = 0
	s.succeeded = 0
	s.failed = 0
	s.lines = 0
	s.diagnostics = 0
	s.cacheHits = 0
	s.totalDuration = 0
}
