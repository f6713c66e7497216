package notify

import (
	"context"
	"io"
	"mime"
	"mime/quotedprintable"
	"net"
	netmail "net/mail"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

// fakeRelay is a scripted SMTP server on a loopback listener.
type fakeRelay struct {
	rejectAuth bool
	refuse     map[string]bool
	// dropAfterData hangs up right after accepting DATA; dropOnQuit hangs
	// up instead of answering QUIT.
	dropAfterData bool
	dropOnQuit    bool

	mu    sync.Mutex
	rcpts []string
	data  string
}

func startRelay(t *testing.T, f *fakeRelay) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go f.serve(conn)
		}
	}()
	return ln.Addr().String()
}

func (f *fakeRelay) serve(conn net.Conn) {
	defer func() { _ = conn.Close() }()
	tp := textproto.NewConn(conn)
	_ = tp.PrintfLine("220 localhost ESMTP fake")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb := line
		if i := strings.IndexByte(line, ' '); i >= 0 {
			verb = line[:i]
		}
		switch strings.ToUpper(verb) {
		case "EHLO", "HELO":
			_ = tp.PrintfLine("250-localhost")
			_ = tp.PrintfLine("250 AUTH PLAIN")
		case "AUTH":
			if f.rejectAuth {
				_ = tp.PrintfLine("535 5.7.8 Username and Password not accepted")
			} else {
				_ = tp.PrintfLine("235 2.7.0 Accepted")
			}
		case "*":
			_ = tp.PrintfLine("501 5.0.0 aborted")
		case "MAIL":
			_ = tp.PrintfLine("250 2.1.0 OK")
		case "RCPT":
			addr := line[strings.IndexByte(line, '<')+1 : strings.IndexByte(line, '>')]
			if f.refuse[addr] {
				_ = tp.PrintfLine("550 5.1.1 no such user")
				continue
			}
			f.mu.Lock()
			f.rcpts = append(f.rcpts, addr)
			f.mu.Unlock()
			_ = tp.PrintfLine("250 2.1.5 OK")
		case "DATA":
			_ = tp.PrintfLine("354 go ahead")
			lines, err := tp.ReadDotLines()
			if err != nil {
				return
			}
			f.mu.Lock()
			f.data = strings.Join(lines, "\r\n")
			f.mu.Unlock()
			_ = tp.PrintfLine("250 2.0.0 queued")
			if f.dropAfterData {
				return
			}
		case "NOOP", "RSET":
			_ = tp.PrintfLine("250 2.0.0 OK")
		case "QUIT":
			if f.dropOnQuit {
				return
			}
			_ = tp.PrintfLine("221 2.0.0 bye")
			return
		default:
			_ = tp.PrintfLine("502 5.5.1 unrecognized command")
		}
	}
}

func newLoopbackClient(t *testing.T, addr string) *SMTPClient {
	t.Helper()
	c, err := NewSMTPClient(SMTPConfig{Host: "localhost", Username: "ci@example.com", Password: "secret", Timeout: 5 * time.Second})
	require.NoError(t, err)
	c.implicitTLS = false
	c.dial = func(ctx context.Context, _, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "tcp", addr)
	}
	c.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return c
}

func (f *fakeRelay) received() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data
}

func TestSend_Delivers(t *testing.T) {
	f := &fakeRelay{}
	c := newLoopbackClient(t, startRelay(t, f))

	err := c.Send(context.Background(), Message{
		To:       []string{"a@example.com", "b@example.com"},
		Subject:  "Release 1.2.0 ✓",
		HTMLBody: "<p>Fixed bug</p>",
	})
	require.NoError(t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, f.rcpts)

	msg, err := netmail.ReadMessage(strings.NewReader(f.data))
	require.NoError(t, err)
	from, err := msg.Header.AddressList("From")
	require.NoError(t, err)
	assert.Equal(t, "ci@example.com", from[0].Address)
	to, err := msg.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 2)
	assert.Equal(t, "b@example.com", to[1].Address)

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Release 1.2.0 ✓", subject)
	date, err := msg.Header.Date()
	require.NoError(t, err)
	assert.True(t, date.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))

	assert.Contains(t, msg.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "quoted-printable", strings.ToLower(msg.Header.Get("Content-Transfer-Encoding")))
	body, err := io.ReadAll(quotedprintable.NewReader(msg.Body))
	require.NoError(t, err)
	assert.Equal(t, "<p>Fixed bug</p>", strings.TrimRight(string(body), "\r\n"))
}

func TestSend_AuthFailure(t *testing.T) {
	c := newLoopbackClient(t, startRelay(t, &fakeRelay{rejectAuth: true}))
	err := c.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "s", HTMLBody: "b"})
	assert.ErrorIs(t, err, ErrAuth)
}

func TestSend_RecipientRefused(t *testing.T) {
	f := &fakeRelay{refuse: map[string]bool{"bad@example.com": true}}
	c := newLoopbackClient(t, startRelay(t, f))
	err := c.Send(context.Background(), Message{To: []string{"a@example.com", "bad@example.com"}, Subject: "s", HTMLBody: "b"})
	assert.ErrorIs(t, err, ErrRecipientsRefused)
	assert.Empty(t, f.received())
}

func TestSend_InvalidRecipient(t *testing.T) {
	c := newLoopbackClient(t, "127.0.0.1:1")
	err := c.Send(context.Background(), Message{To: []string{"not an address"}, Subject: "s", HTMLBody: "b"})
	assert.ErrorIs(t, err, ErrRecipientsRefused)
}

func TestSend_HangupOnQuitAfterAcceptedData(t *testing.T) {
	f := &fakeRelay{dropOnQuit: true}
	c := newLoopbackClient(t, startRelay(t, f))
	err := c.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "s", HTMLBody: "b"})
	require.NoError(t, err)
	assert.NotEmpty(t, f.received())
}

func TestSend_HangupAfterAcceptedData(t *testing.T) {
	f := &fakeRelay{dropAfterData: true}
	c := newLoopbackClient(t, startRelay(t, f))
	err := c.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "s", HTMLBody: "b"})
	require.NoError(t, err)
	assert.NotEmpty(t, f.received())
}

func TestSend_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := newLoopbackClient(t, addr)
	err = c.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "s", HTMLBody: "b"})
	assert.ErrorIs(t, err, ErrUnclassified)
}

func TestSend_NoRecipients(t *testing.T) {
	c := newLoopbackClient(t, "127.0.0.1:1")
	err := c.Send(context.Background(), Message{Subject: "s"})
	assert.ErrorIs(t, err, ErrRecipientsRefused)
}

func TestClassifyDial(t *testing.T) {
	assert.ErrorIs(t, classifyDial(&textproto.Error{Code: 535, Msg: "5.7.8 rejected"}), ErrAuth)
	assert.ErrorIs(t, classifyDial(&textproto.Error{Code: 554, Msg: "go away"}), ErrProtocol)
	assert.ErrorIs(t, classifyDial(io.ErrUnexpectedEOF), ErrUnclassified)
}

func TestClassifySend(t *testing.T) {
	assert.ErrorIs(t, classifySend(&mail.SendError{Reason: mail.ErrSMTPRcptTo}), ErrRecipientsRefused)
	assert.ErrorIs(t, classifySend(&mail.SendError{Reason: mail.ErrSMTPData}), ErrProtocol)
	assert.ErrorIs(t, classifySend(&textproto.Error{Code: 452, Msg: "full"}), ErrProtocol)
	assert.ErrorIs(t, classifySend(io.EOF), ErrUnclassified)
}

func TestNewSMTPClient_Defaults(t *testing.T) {
	_, err := NewSMTPClient(SMTPConfig{Password: "x"})
	assert.Error(t, err)
	_, err = NewSMTPClient(SMTPConfig{Username: "u"})
	assert.Error(t, err)

	c, err := NewSMTPClient(SMTPConfig{Username: "u@example.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.gmail.com", c.host)
	assert.Equal(t, 465, c.port)
	assert.True(t, c.implicitTLS)
	assert.Equal(t, "u@example.com", c.from)
	assert.Equal(t, DefaultTimeout, c.timeout)
}

func TestParseRecipients(t *testing.T) {
	assert.Equal(t, []string{"a@x", "b@x", "c@x"}, ParseRecipients(" a@x, b@x;c@x ,"))
	assert.Empty(t, ParseRecipients(" , "))
}
