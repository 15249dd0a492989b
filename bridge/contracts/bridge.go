package contracts

import (
	"context"

	"github.com/meysamhadeli/kotpad/bridge/models"
)

// ICompileBridge is the client interface to the compiler-hosting bridge
// process on the loopback interface.
type ICompileBridge interface {
	// HealthCheck probes the bridge health endpoint. A non-nil error means
	// the bridge is unreachable; the error names the expected address.
	HealthCheck(ctx context.Context) error

	// Compile submits the source for compilation and streams the bridge's
	// line-delimited response as events, in the order received. The channel
	// is closed after the terminal result or error event.
	Compile(ctx context.Context, filename string, code string) <-chan models.CompileEvent
}
