// Package mailtmpl renders the release email from a plain-text template.
//
// A template uses {placeholder} tokens and two sentinel lines, "#subject" and
// "#body", that route the following lines into the email subject or body.
// A template missing either sentinel is rejected with ErrTemplate (exit 3).
// CRLF and lone CR line endings are read as LF.
package mailtmpl

import (
	"errors"
	"fmt"
	"os"

	"github.com/flarebyte/relmail/internal/changelog"
)

// ErrTemplate is wrapped by every read, substitution or section failure.
var ErrTemplate = errors.New("template render failed")

// Values feeds the template placeholders.
type Values struct {
	DownloadURL string
	LogoURL     string
	Changes     string
	AppName     string
	AppVersion  string
	GitCommit   string
	GitBranch   string
}

// Map returns the placeholder table. Changes is converted to HTML paragraphs.
func (v Values) Map() map[string]string {
	return map[string]string{
		"app_download_url": v.DownloadURL,
		"app_logo_url":     v.LogoURL,
		"change_log":       changelog.ToHTML(v.Changes),
		"app_name":         v.AppName,
		"app_version":      v.AppVersion,
		"git_commit":       v.GitCommit,
		"git_branch":       v.GitBranch,
	}
}

// Email is a rendered message.
type Email struct {
	Subject string `json:"subject" yaml:"subject"`
	Body    string `json:"body" yaml:"body"`
}

// Render reads the template at path and renders it with v.
func Render(path string, v Values) (Email, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Email{}, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return RenderString(string(b), v)
}

// RenderString renders an in-memory template.
func RenderString(tmpl string, v Values) (Email, error) {
	text, err := Substitute(lineEndings.Replace(tmpl), v.Map())
	if err != nil {
		return Email{}, err
	}
	s := Split(text)
	if !s.HasSubject {
		return Email{}, fmt.Errorf("%w: missing %s section", ErrTemplate, subjectMarker)
	}
	if !s.HasBody {
		return Email{}, fmt.Errorf("%w: missing %s section", ErrTemplate, bodyMarker)
	}
	return Email{Subject: s.Subject, Body: s.Body}, nil
}
