package stage

import (
	"context"
	"errors"

	"github.com/flarebyte/relmail/internal/notify"
)

const sendEmailStage = "send-email"

func mailKind(err error) Kind {
	switch {
	case errors.Is(err, notify.ErrAuth):
		return KindMailAuth
	case errors.Is(err, notify.ErrRecipientsRefused):
		return KindMailRefused
	case errors.Is(err, notify.ErrProtocol):
		return KindMailProtocol
	default:
		return KindMailUnclassified
	}
}

// mailFailureMessage is the human line logged for each mail failure kind.
func mailFailureMessage(k Kind) string {
	switch k {
	case KindMailAuth:
		return "authentication error: username and password not accepted"
	case KindMailRefused:
		return "mail relay refused the message"
	case KindMailProtocol:
		return "smtp error"
	default:
		return "unexpected error while sending email"
	}
}

func sendEmailRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Email == nil {
		return Envelope{}, missingInput(sendEmailStage, KindMailUnclassified, "rendered email")
	}
	cfg := in.cfg()
	log := deps.logger()
	mailer, err := deps.mailer(cfg)
	if err != nil {
		return Envelope{}, stageError(sendEmailStage, KindMailUnclassified, err)
	}
	msg := notify.Message{
		To:       notify.ParseRecipients(cfg.EmailTo),
		Subject:  in.Email.Subject,
		HTMLBody: in.Email.Body,
	}
	if err := mailer.Send(ctx, msg); err != nil {
		kind := mailKind(err)
		log.ErrorContext(ctx, mailFailureMessage(kind), "error", err)
		return Envelope{}, stageError(sendEmailStage, kind, err)
	}
	log.InfoContext(ctx, "email sent", "recipients", len(msg.To))
	out := in
	out.Sent = true
	return out, nil
}

func init() { Register(sendEmailStage, sendEmailRunner) }
