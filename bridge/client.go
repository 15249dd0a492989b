package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/meysamhadeli/kotpad/bridge/contracts"
	"github.com/meysamhadeli/kotpad/bridge/models"
)

const (
	defaultHost           = "127.0.0.1"
	defaultPort           = 8177
	defaultConnectTimeout = 3 * time.Second
	defaultHeaderTimeout  = 10 * time.Second
)

// BridgeConfig holds the connection settings for the compile bridge.
type BridgeConfig struct {
	Host           string
	Port           int
	ConnectTimeout time.Duration
	HeaderTimeout  time.Duration
}

// CompileBridge implements the ICompileBridge interface over HTTP against
// the loopback bridge process.
type CompileBridge struct {
	address string
	baseURL string
	client  *http.Client
}

// compileRequest is the JSON body of a compile request.
type compileRequest struct {
	Filename string `json:"filename"`
	Code     string `json:"code"`
}

// NewCompileBridge initializes a bridge client. Zero-value config fields
// fall back to the loopback defaults.
func NewCompileBridge(config *BridgeConfig) contracts.ICompileBridge {
	if config == nil {
		config = &BridgeConfig{}
	}
	host := config.Host
	if host == "" {
		host = defaultHost
	}
	port := config.Port
	if port == 0 {
		port = defaultPort
	}
	connectTimeout := config.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = defaultConnectTimeout
	}
	headerTimeout := config.HeaderTimeout
	if headerTimeout == 0 {
		headerTimeout = defaultHeaderTimeout
	}

	address := fmt.Sprintf("%s:%d", host, port)
	return &CompileBridge{
		address: address,
		baseURL: "http://" + address,
		client: &http.Client{
			// No overall timeout: the compile response is an open-ended
			// stream. Connect and header reads are bounded instead.
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: connectTimeout}).DialContext,
				ResponseHeaderTimeout: headerTimeout,
			},
		},
	}
}

// HealthCheck probes GET /health. Any transport error or non-2xx status is
// reported as the bridge being unreachable at its loopback address.
func (b *CompileBridge) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("compiler bridge unreachable at %s: %v", b.address, err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("compiler bridge unreachable at %s: %v", b.address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("compiler bridge unhealthy at %s: status %d", b.address, resp.StatusCode)
	}
	return nil
}

// Compile streams the compile response line by line. Each received line is
// delivered in order as an event carrying any extracted diagnostic; a line
// that looks terminal-shaped ({...}) and parses as JSON with an "ok" field
// records the attempt outcome, but the outcome is only emitted once the
// stream ends. A stream that closes without any terminal line yields a
// failed result rather than an error.
func (b *CompileBridge) Compile(ctx context.Context, filename string, code string) <-chan models.CompileEvent {
	events := make(chan models.CompileEvent)

	go func() {
		defer close(events)

		// Stream the request body through a pipe so it goes out chunked
		// without a known length up front.
		pr, pw := io.Pipe()
		go func() {
			pw.CloseWithError(json.NewEncoder(pw).Encode(compileRequest{
				Filename: filename,
				Code:     code,
			}))
		}()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/compile", pr)
		if err != nil {
			events <- models.CompileEvent{Err: fmt.Errorf("error creating compile request: %w", err)}
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := b.client.Do(req)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				events <- models.CompileEvent{Err: fmt.Errorf("compile request canceled: %w", err)}
				return
			}
			events <- models.CompileEvent{Err: fmt.Errorf("compiler bridge unreachable at %s: %v", b.address, err)}
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// Prefer server-provided error text over the bare status.
			body, _ := io.ReadAll(resp.Body)
			msg := strings.TrimSpace(string(body))
			if msg == "" {
				msg = resp.Status
			}
			events <- models.CompileEvent{Err: fmt.Errorf("compile request failed: %s", msg)}
			return
		}

		reader := bufio.NewReader(resp.Body)
		var result *models.CompileResult
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				trimmed := strings.TrimRight(line, "\r\n")
				events <- models.CompileEvent{
					Line:       trimmed,
					HasLine:    true,
					Diagnostic: models.ParseDiagnostic(trimmed),
				}
				if r := parseTerminalLine(trimmed); r != nil {
					result = r
				}
			}
			if err != nil {
				if err == io.EOF {
					break
				}
				events <- models.CompileEvent{Err: fmt.Errorf("error reading compile stream: %w", err)}
				return
			}
		}

		if result == nil {
			// Stream ended without a terminal line: a protocol violation,
			// folded into an ordinary failed outcome.
			result = &models.CompileResult{OK: false}
		}
		events <- models.CompileEvent{Result: result}
	}()

	return events
}

// parseTerminalLine returns the compile result carried by a terminal JSON
// line, or nil when the line is not terminal. A terminal-looking line that
// fails to parse, or parses without a boolean "ok" field, is not terminal.
func parseTerminalLine(line string) *models.CompileResult {
	if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
		return nil
	}
	var payload struct {
		OK      *bool  `json:"ok"`
		Jar     string `json:"jar"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(line), &payload); err != nil || payload.OK == nil {
		return nil
	}
	return &models.CompileResult{OK: *payload.OK, Jar: payload.Jar, Message: payload.Message}
}
