package notify

import (
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// newMsg builds a single quoted-printable text/html message. Subject and
// address headers are RFC 2047 encoded by go-mail when needed.
func newMsg(from string, msg Message, now time.Time) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("%w: sender %q: %v", ErrUnclassified, from, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecipientsRefused, err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(now)
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	return m, nil
}
