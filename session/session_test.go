package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meysamhadeli/kotpad/bridge/models"
	"github.com/meysamhadeli/kotpad/syntax"
)

// fakeBridge scripts a compile response stream for tests.
type fakeBridge struct {
	healthErr error
	script    []models.CompileEvent
	compiles  int
	gate      chan struct{} // when set, Compile blocks until the gate closes
}

func (f *fakeBridge) HealthCheck(ctx context.Context) error {
	return f.healthErr
}

func (f *fakeBridge) Compile(ctx context.Context, filename string, code string) <-chan models.CompileEvent {
	f.compiles++
	events := make(chan models.CompileEvent)
	go func() {
		defer close(events)
		if f.gate != nil {
			<-f.gate
		}
		for _, ev := range f.script {
			events <- ev
		}
	}()
	return events
}

// lineEvent builds the event the real client would emit for a raw line.
func lineEvent(line string) models.CompileEvent {
	return models.CompileEvent{Line: line, HasLine: true, Diagnostic: models.ParseDiagnostic(line)}
}

func resultEvent(ok bool, jar, message string) models.CompileEvent {
	return models.CompileEvent{Result: &models.CompileResult{OK: ok, Jar: jar, Message: message}}
}

func connectedSession(t *testing.T, bridge *fakeBridge, opts Options) *Session {
	t.Helper()
	s := NewSession(bridge, opts)
	require.NoError(t, s.Connect(context.Background()))
	return s
}

func TestSession_ConnectSuccess(t *testing.T) {
	var transitions []models.Phase
	s := NewSession(&fakeBridge{}, Options{
		OnStateChange: func(state models.CompileState) {
			transitions = append(transitions, state.Phase)
		},
	})

	require.NoError(t, s.Connect(context.Background()))
	assert.True(t, s.Connected())
	assert.Equal(t, models.PhaseIdle, s.State().Phase)
	assert.Equal(t, []models.Phase{models.PhaseConnecting, models.PhaseIdle}, transitions)
}

func TestSession_ConnectFailure(t *testing.T) {
	bridge := &fakeBridge{healthErr: errors.New("compiler bridge unhealthy at 127.0.0.1:8177: status 503")}
	s := NewSession(bridge, Options{})

	err := s.Connect(context.Background())
	require.Error(t, err)
	assert.False(t, s.Connected())
	assert.Equal(t, models.PhaseFailure, s.State().Phase)
	assert.Contains(t, s.State().Reason, "127.0.0.1:8177")
}

func TestSession_CompileRequiresConnection(t *testing.T) {
	s := NewSession(&fakeBridge{}, Options{})
	assert.ErrorIs(t, s.Compile(context.Background()), ErrNotConnected)
}

func TestSession_CompileFailureWithDiagnostics(t *testing.T) {
	bridge := &fakeBridge{script: []models.CompileEvent{
		lineEvent("Compiling..."),
		lineEvent("/tmp/Main.kt:3:1: error: x"),
		lineEvent(`{"ok":false,"message":"boom"}`),
		resultEvent(false, "", "boom"),
	}}

	var lines []string
	s := connectedSession(t, bridge, Options{
		OnCompileLine: func(line string) { lines = append(lines, line) },
	})
	s.SetText("x")

	require.NoError(t, s.Compile(context.Background()))

	assert.Equal(t, []string{
		"Compiling...",
		"/tmp/Main.kt:3:1: error: x",
		`{"ok":false,"message":"boom"}`,
	}, s.Log())
	assert.Equal(t, s.Log(), lines, "callback sees the same lines in the same order")
	assert.Equal(t, []int{3}, s.Diagnostics())

	state := s.State()
	assert.Equal(t, models.PhaseFailure, state.Phase)
	assert.Equal(t, "boom", state.Reason)
}

func TestSession_CompileSuccess(t *testing.T) {
	bridge := &fakeBridge{script: []models.CompileEvent{
		lineEvent("Compiling..."),
		lineEvent(`{"ok":true,"jar":"/tmp/Out.jar"}`),
		resultEvent(true, "/tmp/Out.jar", ""),
	}}

	s := connectedSession(t, bridge, Options{})
	s.SetText("fun main() {}")

	require.NoError(t, s.Compile(context.Background()))

	state := s.State()
	assert.Equal(t, models.PhaseSuccess, state.Phase)
	assert.Equal(t, "/tmp/Out.jar", state.ArtifactPath)
	assert.Empty(t, s.Diagnostics())
}

func TestSession_CompileFailureWithoutMessage(t *testing.T) {
	bridge := &fakeBridge{script: []models.CompileEvent{
		lineEvent("still going"),
		resultEvent(false, "", ""),
	}}

	s := connectedSession(t, bridge, Options{})
	require.NoError(t, s.Compile(context.Background()))

	state := s.State()
	assert.Equal(t, models.PhaseFailure, state.Phase)
	assert.NotEmpty(t, state.Reason, "user-visible failures always carry a reason")
}

func TestSession_TransportErrorBecomesFailure(t *testing.T) {
	bridge := &fakeBridge{script: []models.CompileEvent{
		lineEvent("Compiling..."),
		{Err: errors.New("error reading compile stream: connection reset")},
	}}

	s := connectedSession(t, bridge, Options{})
	require.NoError(t, s.Compile(context.Background()))

	state := s.State()
	assert.Equal(t, models.PhaseFailure, state.Phase)
	assert.Contains(t, state.Reason, "connection reset")
}

func TestSession_NewAttemptResetsLogAndDiagnostics(t *testing.T) {
	bridge := &fakeBridge{script: []models.CompileEvent{
		lineEvent("/tmp/Main.kt:3:1: error: x"),
		resultEvent(false, "", "boom"),
	}}
	s := connectedSession(t, bridge, Options{})
	s.SetText("x")

	require.NoError(t, s.Compile(context.Background()))
	require.Equal(t, []int{3}, s.Diagnostics())
	require.Len(t, s.Log(), 1)

	// Retry after failure is always possible; the new attempt starts clean.
	bridge.script = []models.CompileEvent{
		lineEvent("Compiling..."),
		resultEvent(true, "/tmp/Out.jar", ""),
	}
	s.SetText("fun main() {}")
	require.NoError(t, s.Compile(context.Background()))

	assert.Equal(t, []string{"Compiling..."}, s.Log())
	assert.Empty(t, s.Diagnostics())
	assert.Equal(t, models.PhaseSuccess, s.State().Phase)
}

func TestSession_CompileGating(t *testing.T) {
	gate := make(chan struct{})
	bridge := &fakeBridge{
		gate:   gate,
		script: []models.CompileEvent{resultEvent(true, "", "")},
	}
	s := connectedSession(t, bridge, Options{})

	done := make(chan error, 1)
	go func() { done <- s.Compile(context.Background()) }()

	require.Eventually(t, func() bool {
		return s.State().Phase == models.PhaseCompiling
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, s.Compile(context.Background()), ErrCompileInFlight)

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, models.PhaseSuccess, s.State().Phase)
}

func TestSession_ArtifactCacheSkipsBridge(t *testing.T) {
	jar := filepath.Join(t.TempDir(), "Out.jar")
	require.NoError(t, os.WriteFile(jar, []byte("jar"), 0644))

	cache, err := NewArtifactCache(t.TempDir())
	require.NoError(t, err)

	bridge := &fakeBridge{script: []models.CompileEvent{
		lineEvent("Compiling..."),
		resultEvent(true, jar, ""),
	}}
	s := connectedSession(t, bridge, Options{ArtifactCache: cache})
	s.SetText("fun main() {}")

	require.NoError(t, s.Compile(context.Background()))
	require.Equal(t, 1, bridge.compiles)
	require.Equal(t, models.PhaseSuccess, s.State().Phase)

	// Same source again: served from the cache, no bridge round-trip.
	require.NoError(t, s.Compile(context.Background()))
	assert.Equal(t, 1, bridge.compiles)
	assert.Equal(t, jar, s.State().ArtifactPath)
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestSession_HighlightFeedsDiagnosticsIntoErrorOverlay(t *testing.T) {
	bridge := &fakeBridge{script: []models.CompileEvent{
		lineEvent("/tmp/Main.kt:1:1: error: x"),
		resultEvent(false, "", "boom"),
	}}
	s := connectedSession(t, bridge, Options{Rules: syntax.DefaultKotlinRules()})
	s.SetText("val x =\nval y = 2")

	require.NoError(t, s.Compile(context.Background()))
	require.Equal(t, []int{1}, s.Diagnostics())

	out := s.Highlight("", false, false)
	assert.Equal(t, "val x =\nval y = 2", ansiPattern.ReplaceAllString(out, ""))
}

func TestSession_SubscribeLines(t *testing.T) {
	bridge := &fakeBridge{script: []models.CompileEvent{
		lineEvent("Compiling..."),
		resultEvent(true, "", ""),
	}}
	s := connectedSession(t, bridge, Options{})
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lines := s.SubscribeLines(ctx)

	require.NoError(t, s.Compile(context.Background()))

	select {
	case ev := <-lines:
		assert.Equal(t, "Compiling...", ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for line event")
	}
}
