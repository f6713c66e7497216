package stage

import (
	"github.com/flarebyte/relmail/internal/artifact"
	"github.com/flarebyte/relmail/internal/config"
	"github.com/flarebyte/relmail/internal/distribution"
	"github.com/flarebyte/relmail/internal/gitinfo"
	"github.com/flarebyte/relmail/internal/mailtmpl"
)

// Meta holds run-wide settings.
type Meta struct {
	RunID  string
	Config *config.Config
}

// Envelope is the value passed from stage to stage. Each stage fills in its
// own result and never mutates earlier ones.
type Envelope struct {
	Meta     *Meta
	Artifact *artifact.Artifact
	Git      *gitinfo.Info
	Upload   *distribution.UploadResult
	Changes  *string
	Email    *mailtmpl.Email
	Sent     bool
}

func (e Envelope) cfg() *config.Config {
	if e.Meta == nil || e.Meta.Config == nil {
		return &config.Config{}
	}
	return e.Meta.Config
}
