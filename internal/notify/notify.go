// Package notify delivers the release email over an implicit-TLS SMTP relay.
package notify

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	DefaultHost    = "smtp.gmail.com"
	DefaultPort    = 465
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrAuth means the relay rejected the credentials.
	ErrAuth = errors.New("smtp authentication failed")
	// ErrRecipientsRefused means the relay answered with a non-empty refusal.
	ErrRecipientsRefused = errors.New("recipients refused")
	// ErrProtocol wraps SMTP reply errors outside authentication.
	ErrProtocol = errors.New("smtp protocol error")
	// ErrUnclassified wraps dial, TLS and I/O failures.
	ErrUnclassified = errors.New("smtp send failed")
)

// Message is a single HTML email.
type Message struct {
	To       []string
	Subject  string
	HTMLBody string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ParseRecipients splits a comma or semicolon separated recipient list.
func ParseRecipients(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
