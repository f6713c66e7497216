package stage

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/flarebyte/relmail/internal/distribution"
	"github.com/flarebyte/relmail/internal/notify"
)

// Deps carries the collaborators stages talk to. Nil fields fall back to
// production defaults built from the envelope config.
type Deps struct {
	HTTPClient *http.Client
	Mailer     notify.Sender
	Logger     *slog.Logger
	Progress   distribution.ProgressFunc
	Stdout     io.Writer
}

// Runner executes a stage.
type Runner func(ctx context.Context, in Envelope, deps Deps) (Envelope, error)

var registry = map[string]Runner{}

// Register adds a stage runner.
func Register(name string, r Runner) {
	registry[name] = r
}

// Run executes a registered stage by name.
func Run(ctx context.Context, name string, in Envelope, deps Deps) (Envelope, error) {
	r, ok := registry[name]
	if !ok {
		return Envelope{}, ErrUnknown{name: name}
	}
	return r(ctx, in, deps)
}

// ErrUnknown is returned when a stage is not found.
type ErrUnknown struct{ name string }

func (e ErrUnknown) Error() string { return "unknown stage: " + e.name }
