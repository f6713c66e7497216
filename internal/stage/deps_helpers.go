package stage

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/flarebyte/relmail/internal/config"
	"github.com/flarebyte/relmail/internal/logging"
	"github.com/flarebyte/relmail/internal/notify"
)

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return logging.Discard()
	}
	return d.Logger
}

func (d Deps) stdout() io.Writer {
	if d.Stdout == nil {
		return os.Stdout
	}
	return d.Stdout
}

func (d Deps) httpClient() *http.Client {
	if d.HTTPClient == nil {
		return &http.Client{}
	}
	return d.HTTPClient
}

func (d Deps) mailer(cfg *config.Config) (notify.Sender, error) {
	if d.Mailer != nil {
		return d.Mailer, nil
	}
	return notify.NewSMTPClient(notify.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.User,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		Timeout:  cfg.Mail.Timeout,
	})
}
