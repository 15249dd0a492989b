// Package session owns the editor-side compile state: the current source
// buffer, the compile log and diagnostic set for the running attempt, and
// the CompileState machine. All mutation happens on the goroutine that
// calls Compile, so readers only ever need cheap copy-on-read snapshots.
package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	bridge_contracts "github.com/meysamhadeli/kotpad/bridge/contracts"
	"github.com/meysamhadeli/kotpad/bridge/models"
	"github.com/meysamhadeli/kotpad/pubsub"
	stats_contracts "github.com/meysamhadeli/kotpad/stats/contracts"
	"github.com/meysamhadeli/kotpad/syntax"
)

var (
	// ErrCompileInFlight is returned when a compile is requested while a
	// prior attempt has not reached a terminal state.
	ErrCompileInFlight = errors.New("a compile attempt is already in flight")

	// ErrNotConnected is returned when a compile is requested before a
	// successful health check.
	ErrNotConnected = errors.New("not connected to the compiler bridge")
)

// Options configures a Session. All fields are optional.
type Options struct {
	Filename      string
	Rules         *syntax.RuleSet
	Stats         stats_contracts.ISessionStats
	ArtifactCache *ArtifactCache
	UndoLimit     int

	// OnCompileLine and OnStateChange are invoked on the goroutine that
	// called Compile (or Connect), once per received line and once per
	// state transition.
	OnCompileLine func(line string)
	OnStateChange func(state models.CompileState)
}

// Session is the editor session around one scratch file.
type Session struct {
	mu          sync.Mutex
	bridge      bridge_contracts.ICompileBridge
	filename    string
	rules       *syntax.RuleSet
	buffer      *Buffer
	highlight   *syntax.HighlightCache
	stats       stats_contracts.ISessionStats
	cache       *ArtifactCache
	state       models.CompileState
	connected   bool
	log         []string
	diagnostics map[int]struct{}

	onLine      func(string)
	onState     func(models.CompileState)
	lineBroker  *pubsub.Broker[string]
	stateBroker *pubsub.Broker[models.CompileState]
}

// NewSession creates an idle, disconnected session.
func NewSession(bridge bridge_contracts.ICompileBridge, opts Options) *Session {
	filename := opts.Filename
	if filename == "" {
		filename = "Main.kt"
	}
	return &Session{
		bridge:      bridge,
		filename:    filename,
		rules:       opts.Rules,
		buffer:      NewBuffer(opts.UndoLimit),
		highlight:   syntax.NewHighlightCache(0),
		stats:       opts.Stats,
		cache:       opts.ArtifactCache,
		state:       models.Idle(),
		diagnostics: make(map[int]struct{}),
		onLine:      opts.OnCompileLine,
		onState:     opts.OnStateChange,
		lineBroker:  pubsub.NewBroker[string](),
		stateBroker: pubsub.NewBroker[models.CompileState](),
	}
}

// Connect runs the bridge health check. On success the session returns to
// Idle with a live connection; on failure it enters Failure with a reason
// naming the bridge address.
func (s *Session) Connect(ctx context.Context) error {
	s.setState(models.Connecting())

	if err := s.bridge.HealthCheck(ctx); err != nil {
		s.mu.Lock()
		s.connected = false
		s.mu.Unlock()
		s.setState(models.Failure(err.Error()))
		return err
	}

	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	s.setState(models.Idle())
	return nil
}

// Connected reports whether the last health check succeeded.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Compile runs one compile attempt to its terminal state, streaming output
// lines through the callbacks and brokers in the order received. The call
// blocks until the attempt ends; a compile failure is reported through
// CompileState, not through the returned error. The error is non-nil only
// when the attempt could not start (already compiling, not connected).
func (s *Session) Compile(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Phase == models.PhaseCompiling {
		s.mu.Unlock()
		return ErrCompileInFlight
	}
	if !s.connected {
		s.mu.Unlock()
		return ErrNotConnected
	}
	// New attempt: clear the log and diagnostic set before anything streams.
	s.log = nil
	s.diagnostics = make(map[int]struct{})
	code := s.buffer.Text()
	filename := s.filename
	s.mu.Unlock()

	s.setState(models.Compiling())
	start := time.Now()

	if s.cache != nil {
		if jar, ok := s.cache.Get(code); ok {
			if s.stats != nil {
				s.stats.RecordCacheHit()
				s.stats.RecordAttempt(true, time.Since(start))
			}
			s.setState(models.Success(jar))
			return nil
		}
	}

	final := models.Failure("compile failed")
	for ev := range s.bridge.Compile(ctx, filename, code) {
		switch {
		case ev.HasLine:
			s.mu.Lock()
			s.log = append(s.log, ev.Line)
			if ev.Diagnostic != nil {
				s.diagnostics[ev.Diagnostic.Line] = struct{}{}
			}
			s.mu.Unlock()

			if s.stats != nil {
				s.stats.RecordLine()
				if ev.Diagnostic != nil {
					s.stats.RecordDiagnostic()
				}
			}
			if s.onLine != nil {
				s.onLine(ev.Line)
			}
			s.lineBroker.Publish(pubsub.LineEvent, ev.Line)

		case ev.Result != nil:
			if ev.Result.OK {
				final = models.Success(ev.Result.Jar)
			} else if ev.Result.Message != "" {
				final = models.Failure(ev.Result.Message)
			}

		case ev.Err != nil:
			final = models.Failure(ev.Err.Error())
		}
	}

	if s.stats != nil {
		s.stats.RecordAttempt(final.Phase == models.PhaseSuccess, time.Since(start))
	}
	if final.Phase == models.PhaseSuccess && s.cache != nil && final.ArtifactPath != "" {
		_ = s.cache.Set(code, final.ArtifactPath)
	}
	s.setState(final)
	return nil
}

// State returns the current compile state.
func (s *Session) State() models.CompileState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Log returns a snapshot of the compile log for the current attempt.
func (s *Session) Log() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.log))
	copy(out, s.log)
	return out
}

// Diagnostics returns the extracted error line numbers, sorted.
func (s *Session) Diagnostics() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.diagnostics))
	for ln := range s.diagnostics {
		out = append(out, ln)
	}
	sort.Ints(out)
	return out
}

// DiagnosticSet returns a copy of the error line set, in the shape the
// error overlay consumes.
func (s *Session) DiagnosticSet() map[int]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]struct{}, len(s.diagnostics))
	for ln := range s.diagnostics {
		out[ln] = struct{}{}
	}
	return out
}

// SetText replaces the buffer content, recording undo history.
func (s *Session) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer.SetText(text)
}

// Text returns the current buffer content.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.Text()
}

// Undo steps the buffer back one edit. Reports whether anything changed.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.Undo()
}

// Redo re-applies the most recently undone edit.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.Redo()
}

// SetRules swaps the active RuleSet, e.g. after a rules-file reload. The
// highlight cache keys on the rule fingerprint, so no flush is needed.
func (s *Session) SetRules(rules *syntax.RuleSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = rules
}

// Highlight renders the current buffer with base classification, the
// search overlay for query, and the error overlay for the current
// diagnostic set.
func (s *Session) Highlight(query string, caseSensitive, wholeWord bool) string {
	s.mu.Lock()
	text := s.buffer.Text()
	rules := s.rules
	s.mu.Unlock()

	st := s.highlight.Tokenize(text, rules)
	st = syntax.SearchOverlay(st, query, caseSensitive, wholeWord)
	st = syntax.ErrorOverlay(st, s.DiagnosticSet())
	return syntax.Render(st)
}

// SubscribeLines delivers compile log lines until ctx is cancelled.
func (s *Session) SubscribeLines(ctx context.Context) <-chan pubsub.Event[string] {
	return s.lineBroker.Subscribe(ctx)
}

// SubscribeStates delivers state transitions until ctx is cancelled.
func (s *Session) SubscribeStates(ctx context.Context) <-chan pubsub.Event[models.CompileState] {
	return s.stateBroker.Subscribe(ctx)
}

// Close shuts down the session's event brokers.
func (s *Session) Close() {
	s.lineBroker.Close()
	s.stateBroker.Close()
}

func (s *Session) setState(state models.CompileState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	if s.onState != nil {
		s.onState(state)
	}
	s.stateBroker.Publish(pubsub.StateEvent, state)
}
