package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/frahmantamala/mastersight/internal"
)

type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender delivers through the configured relay, one connection per message.
type SMTPSender struct {
	from   string
	client *mail.Client
}

func NewSMTPSender(cfg internal.MailConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.SendTimeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.SendTimeout))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{from: cfg.From, client: client}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	return s.client.DialAndSendWithContext(ctx, msg)
}
