package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/textproto"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig configures an SMTPClient.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From defaults to Username.
	From    string
	Timeout time.Duration
	// TLSConfig overrides the default implicit-TLS settings.
	TLSConfig *tls.Config
}

// SMTPClient sends mail through an implicit-TLS relay (SMTPS).
type SMTPClient struct {
	host      string
	port      int
	username  string
	password  string
	from      string
	timeout   time.Duration
	tlsConfig *tls.Config

	// implicitTLS is cleared and dial set only by loopback tests.
	implicitTLS bool
	dial        mail.DialContextFunc
	now         func() time.Time
}

// NewSMTPClient validates cfg and applies defaults.
func NewSMTPClient(cfg SMTPConfig) (*SMTPClient, error) {
	user := strings.TrimSpace(cfg.Username)
	if user == "" {
		return nil, errors.New("smtp username is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("smtp password is required")
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = DefaultHost
	}
	port := cfg.Port
	if port <= 0 {
		port = DefaultPort
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = user
	}
	tlsCfg := cfg.TLSConfig
	if tlsCfg == nil {
		tlsCfg = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	}
	return &SMTPClient{
		host:        host,
		port:        port,
		username:    user,
		password:    cfg.Password,
		from:        from,
		timeout:     timeout,
		tlsConfig:   tlsCfg,
		implicitTLS: true,
		now:         time.Now,
	}, nil
}

func (c *SMTPClient) options() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(c.port),
		mail.WithTimeout(c.timeout),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(c.username),
		mail.WithPassword(c.password),
	}
	if c.implicitTLS {
		opts = append(opts, mail.WithSSL(), mail.WithTLSConfig(c.tlsConfig))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if c.dial != nil {
		opts = append(opts, mail.WithDialContextFunc(c.dial))
	}
	return opts
}

// Send authenticates and submits msg. Any refused recipient fails the send.
// Once the relay has accepted the message, failures while closing the
// session are ignored.
func (c *SMTPClient) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("%w: no recipients", ErrRecipientsRefused)
	}
	m, err := newMsg(c.from, msg, c.now())
	if err != nil {
		return err
	}
	client, err := mail.NewClient(c.host, c.options()...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnclassified, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := client.DialWithContext(ctx); err != nil {
		return classifyDial(err)
	}
	sendErr := client.Send(m)
	// QUIT after an accepted DATA does not change the outcome.
	_ = client.Close()
	if sendErr != nil && !m.IsDelivered() {
		return classifySend(sendErr)
	}
	return nil
}

// classifyDial maps connection, greeting and authentication failures.
func classifyDial(err error) error {
	var te *textproto.Error
	if errors.As(err, &te) {
		if te.Code >= 530 && te.Code < 540 {
			return fmt.Errorf("%w: %d %s", ErrAuth, te.Code, te.Msg)
		}
		return fmt.Errorf("%w: %d %s", ErrProtocol, te.Code, te.Msg)
	}
	return fmt.Errorf("%w: %v", ErrUnclassified, err)
}

// classifySend maps failures of the MAIL/RCPT/DATA exchange.
func classifySend(err error) error {
	var se *mail.SendError
	if errors.As(err, &se) {
		switch se.Reason {
		case mail.ErrSMTPRcptTo:
			return fmt.Errorf("%w: %v", ErrRecipientsRefused, err)
		case mail.ErrSMTPMailFrom, mail.ErrSMTPData, mail.ErrSMTPDataClose:
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
	}
	var te *textproto.Error
	if errors.As(err, &te) {
		return fmt.Errorf("%w: %d %s", ErrProtocol, te.Code, te.Msg)
	}
	return fmt.Errorf("%w: %v", ErrUnclassified, err)
}
