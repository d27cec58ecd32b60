package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/Igor-Vicente/English.Registration.API/pkg/config"
)

const dialTimeout = 15 * time.Second

// Message is an outbound HTML e-mail.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers messages through an authenticated SMTP relay using STARTTLS.
type SMTPSender struct {
	host    string
	from    string
	opts    []gomail.Option
	deliver func(ctx context.Context, m *gomail.Msg) error
}

// NewSMTPSender builds a sender from configuration. MAIL_FROM defaults to the username.
func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	opts := []gomail.Option{
		gomail.WithTLSPolicy(gomail.TLSMandatory),
		gomail.WithTimeout(dialTimeout),
	}
	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	if _, err := gomail.NewClient(cfg.Host, opts...); err != nil {
		return nil, fmt.Errorf("mail client: %w", err)
	}

	s := &SMTPSender{host: cfg.Host, from: from, opts: opts}
	s.deliver = s.dialAndSend
	return s, nil
}

// Send writes the message to the relay.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := s.compose(msg)
	if err != nil {
		return err
	}
	if err := s.deliver(ctx, m); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (s *SMTPSender) compose(msg Message) (*gomail.Msg, error) {
	if s.from == "" {
		return nil, fmt.Errorf("mail sender address not configured")
	}
	m := gomail.NewMsg()
	if err := m.From(s.from); err != nil {
		return nil, fmt.Errorf("mail from %q: %w", s.from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("mail recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	return m, nil
}

// dialAndSend opens one connection per message; the relay is only used for password resets.
func (s *SMTPSender) dialAndSend(ctx context.Context, m *gomail.Msg) error {
	client, err := gomail.NewClient(s.host, s.opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, m)
}
