package models

import (
	"regexp"
	"strconv"
)

// Phase enumerates the compile session states.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConnecting
	PhaseCompiling
	PhaseSuccess
	PhaseFailure
)

// String returns the display name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseConnecting:
		return "connecting"
	case PhaseCompiling:
		return "compiling"
	case PhaseSuccess:
		return "success"
	case PhaseFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// CompileState is the tagged compile state exposed to the rest of the
// application. Exactly one phase is live at a time; ArtifactPath is only
// meaningful for PhaseSuccess and Reason only for PhaseFailure. Consumers
// switch exhaustively on Phase.
type CompileState struct {
	Phase        Phase
	ArtifactPath string
	Reason       string
}

func Idle() CompileState       { return CompileState{Phase: PhaseIdle} }
func Connecting() CompileState { return CompileState{Phase: PhaseConnecting} }
func Compiling() CompileState  { return CompileState{Phase: PhaseCompiling} }

// Success builds the terminal success state carrying the artifact path,
// which may be empty when the bridge reported none.
func Success(artifactPath string) CompileState {
	return CompileState{Phase: PhaseSuccess, ArtifactPath: artifactPath}
}

// Failure builds the terminal failure state. The reason is always non-empty
// for user-visible failures.
func Failure(reason string) CompileState {
	return CompileState{Phase: PhaseFailure, Reason: reason}
}

// Terminal reports whether the state ends the current compile attempt.
func (s CompileState) Terminal() bool {
	return s.Phase == PhaseSuccess || s.Phase == PhaseFailure
}

// Diagnostic is a compiler-reported error location extracted from streamed
// output. Line is 1-based.
type Diagnostic struct {
	Line int
}

// diagnosticPattern recognizes kotlinc-style diagnostic lines of the shape
// <anything>:<line>:<column>: error: <message>. Warning-level lines are
// observed in the log but deliberately never contribute to the error set.
var diagnosticPattern = regexp.MustCompile(`^.*:(\d+):(\d+): error: `)

// ParseDiagnostic extracts a diagnostic from a raw output line, or nil when
// the line carries no recognizable error location.
func ParseDiagnostic(line string) *Diagnostic {
	m := diagnosticPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	ln, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &Diagnostic{Line: ln}
}

// CompileResult is the terminal outcome carried by the final JSON line of a
// compile response stream.
type CompileResult struct {
	OK      bool   `json:"ok"`
	Jar     string `json:"jar,omitempty"`
	Message string `json:"message,omitempty"`
}

// CompileEvent is one item of the streamed compile response. Exactly one of
// the cases is populated: a received line (with its optional diagnostic), a
// terminal result, or a transport error. The result or error is always the
// last event before the channel closes.
type CompileEvent struct {
	Line       string
	HasLine    bool
	Diagnostic *Diagnostic
	Result     *CompileResult
	Err        error
}
