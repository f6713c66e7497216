package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flarebyte/relmail/internal/distribution"
	"github.com/flarebyte/relmail/internal/notify"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "RELMAIL_"

// Output formats for the run summary.
const (
	OutputYAML = "yaml"
	OutputJSON = "json"
	OutputNone = "none"
)

// Config is the merged run configuration. Sources are applied in order:
// CUE file, environment, command-line flags.
type Config struct {
	ConfigVersion string

	ReleaseDir    string `env:"RELEASE_DIR"`
	ChangelogFile string `env:"CHANGELOG_FILE"`
	TemplateFile  string `env:"TEMPLATE_FILE"`
	AppName       string `env:"APP_NAME"`
	EmailTo       string `env:"EMAIL_TO"`

	Mail         Mail
	Distribution Distribution

	GitRepo   string `env:"GIT_REPO"`
	Output    string `env:"OUTPUT"`
	LogFormat string `env:"LOG_FORMAT"`
}

// Mail holds the SMTP relay settings.
type Mail struct {
	User     string        `env:"GMAIL_USER"`
	Password string        `env:"GMAIL_PASSWORD"`
	Host     string        `env:"SMTP_HOST"`
	Port     int           `env:"SMTP_PORT"`
	From     string        `env:"SMTP_FROM"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT"`
}

// Distribution holds the upload service settings.
type Distribution struct {
	Token        string        `env:"DIAWI_TOKEN"`
	UploadURL    string        `env:"UPLOAD_URL"`
	StatusURL    string        `env:"STATUS_URL"`
	PollInterval time.Duration `env:"POLL_INTERVAL"`
	PollTimeout  time.Duration `env:"POLL_TIMEOUT"`
	MaxAttempts  int           `env:"POLL_MAX_ATTEMPTS"`
	Fields       distribution.Fields
}

// Sanitize fills defaults for optional settings.
func (c *Config) Sanitize() {
	if c.ConfigVersion == "" {
		c.ConfigVersion = CurrentConfigVersion
	}
	if c.Mail.Host == "" {
		c.Mail.Host = notify.DefaultHost
	}
	if c.Mail.Port <= 0 {
		c.Mail.Port = notify.DefaultPort
	}
	if c.Mail.Timeout <= 0 {
		c.Mail.Timeout = notify.DefaultTimeout
	}
	if c.Distribution.UploadURL == "" {
		c.Distribution.UploadURL = distribution.DefaultUploadURL
	}
	if c.Distribution.StatusURL == "" {
		c.Distribution.StatusURL = distribution.DefaultStatusURL
	}
	if c.Distribution.PollInterval <= 0 {
		c.Distribution.PollInterval = distribution.DefaultPollInterval
	}
	if c.Distribution.PollTimeout <= 0 {
		c.Distribution.PollTimeout = distribution.DefaultPollTimeout
	}
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	f, def := &c.Distribution.Fields, distribution.DefaultFields()
	fill(&f.Job, def.Job)
	fill(&f.Message, def.Message)
	fill(&f.ReadyValue, def.ReadyValue)
	fill(&f.Status, def.Status)
	fill(&f.FailedValue, def.FailedValue)
	fill(&f.Link, def.Link)
	fill(&f.QRCode, def.QRCode)
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
	if c.Output == "" {
		c.Output = OutputYAML
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

// Validate checks that every value needed by `relmail run` is present.
func (c Config) Validate() error {
	return c.validate([]requiredValue{
		{"release.dir", c.ReleaseDir},
		{"changelog.file", c.ChangelogFile},
		{"template.file", c.TemplateFile},
		{"email.to", c.EmailTo},
		{"gmail.user", c.Mail.User},
		{"gmail.password", c.Mail.Password},
		{"diawi.token", c.Distribution.Token},
		{"app.name", c.AppName},
	})
}

// ValidatePreview checks the values needed to render without sending.
func (c Config) ValidatePreview() error {
	return c.validate([]requiredValue{
		{"release.dir", c.ReleaseDir},
		{"changelog.file", c.ChangelogFile},
		{"template.file", c.TemplateFile},
		{"app.name", c.AppName},
	})
}

type requiredValue struct {
	flag  string
	value string
}

func (c Config) validate(required []requiredValue) error {
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, "--"+r.flag)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required flag: %s", strings.Join(missing, ", "))
	}
	switch c.Output {
	case OutputYAML, OutputJSON, OutputNone:
	default:
		return fmt.Errorf("invalid output format: %q (expected yaml, json or none)", c.Output)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %q (expected text or json)", c.LogFormat)
	}
	if c.Distribution.MaxAttempts < 0 {
		return errors.New("invalid poll max attempts: must not be negative")
	}
	return nil
}
