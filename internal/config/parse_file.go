package config

import (
	"fmt"
	"time"

	"cuelang.org/go/cue"
)

// LoadFile reads a .cue config file. Every section is optional; values that
// are present must have the expected kind.
func LoadFile(path string) (Config, error) {
	v, err := compileCUE(path)
	if err != nil {
		return Config{}, err
	}
	if err := requireStringField(v, "configVersion"); err != nil {
		return Config{}, err
	}
	var c Config
	_ = v.LookupPath(cue.ParsePath("configVersion")).Decode(&c.ConfigVersion)
	if !IsSupportedConfigVersion(c.ConfigVersion) {
		return Config{}, fmt.Errorf("unsupported configVersion: %q (supported: %s)", c.ConfigVersion, SupportedConfigVersionsCSV())
	}

	p := &fileParser{v: v}
	p.str("release.dir", &c.ReleaseDir)
	p.str("release.appName", &c.AppName)
	p.str("changelog.file", &c.ChangelogFile)
	p.str("template.file", &c.TemplateFile)
	p.str("mail.to", &c.EmailTo)
	p.str("mail.user", &c.Mail.User)
	p.str("mail.password", &c.Mail.Password)
	p.str("mail.host", &c.Mail.Host)
	p.integer("mail.port", &c.Mail.Port)
	p.str("mail.from", &c.Mail.From)
	p.millis("mail.timeoutMs", &c.Mail.Timeout)
	p.str("distribution.token", &c.Distribution.Token)
	p.str("distribution.uploadURL", &c.Distribution.UploadURL)
	p.str("distribution.statusURL", &c.Distribution.StatusURL)
	p.millis("distribution.pollIntervalMs", &c.Distribution.PollInterval)
	p.millis("distribution.pollTimeoutMs", &c.Distribution.PollTimeout)
	p.integer("distribution.maxAttempts", &c.Distribution.MaxAttempts)
	f := &c.Distribution.Fields
	p.str("distribution.fields.job", &f.Job)
	p.str("distribution.fields.message", &f.Message)
	p.str("distribution.fields.readyValue", &f.ReadyValue)
	p.str("distribution.fields.status", &f.Status)
	p.str("distribution.fields.failedValue", &f.FailedValue)
	p.str("distribution.fields.link", &f.Link)
	p.str("distribution.fields.qrcode", &f.QRCode)
	p.str("git.repo", &c.GitRepo)
	p.str("output.format", &c.Output)
	p.str("log.format", &c.LogFormat)
	if p.err != nil {
		return Config{}, p.err
	}
	return c, nil
}

func requireStringField(v cue.Value, name string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return fmt.Errorf("missing required field: %s", name)
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	return nil
}

// fileParser records the first type error and skips absent fields.
type fileParser struct {
	v   cue.Value
	err error
}

func (p *fileParser) lookup(path string, kind cue.Kind, want string) (cue.Value, bool) {
	if p.err != nil {
		return cue.Value{}, false
	}
	f := p.v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return cue.Value{}, false
	}
	if f.Kind() != kind {
		p.err = fmt.Errorf("invalid type for field: %s (expected %s)", path, want)
		return cue.Value{}, false
	}
	return f, true
}

func (p *fileParser) str(path string, dst *string) {
	if f, ok := p.lookup(path, cue.StringKind, "string"); ok {
		_ = f.Decode(dst)
	}
}

func (p *fileParser) integer(path string, dst *int) {
	if f, ok := p.lookup(path, cue.IntKind, "int"); ok {
		_ = f.Decode(dst)
	}
}

func (p *fileParser) millis(path string, dst *time.Duration) {
	var ms int
	if f, ok := p.lookup(path, cue.IntKind, "int"); ok {
		_ = f.Decode(&ms)
		*dst = time.Duration(ms) * time.Millisecond
	}
}
