package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"Attendly/config"
	"Attendly/pkg/breaker"
	"Attendly/pkg/logger"
)

const (
	TransportConsole = "console"
	TransportSMTP    = "smtp"
)

// Sender 邮件投递方式
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Transport() string
}

// NewSender 按 MAIL_TRANSPORT 选择实现
func NewSender(cfg *config.Config) (Sender, error) {
	switch cfg.MailTransport {
	case TransportConsole, "":
		return NewConsoleSender(logger.Named("mail")), nil
	case TransportSMTP:
		return NewSMTPSender(cfg)
	default:
		return nil, fmt.Errorf("unsupported mail transport %q", cfg.MailTransport)
	}
}

// ConsoleSender 只记录日志，开发环境使用
type ConsoleSender struct {
	log *zap.Logger
}

func NewConsoleSender(log *zap.Logger) *ConsoleSender {
	return &ConsoleSender{log: log}
}

func (s *ConsoleSender) Send(ctx context.Context, msg Message) error {
	s.log.Info("[MAIL-CONSOLE]",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}

func (s *ConsoleSender) Transport() string { return TransportConsole }

// SMTPSender 通过 SMTP 投递，连续失败后熔断，避免拖住整个消费者
type SMTPSender struct {
	client  *gomail.Client
	breaker *breaker.CircuitBreaker
	from    string
}

func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.MailPort),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
	}
	if cfg.MailUser != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.MailUser),
			gomail.WithPassword(cfg.MailPass),
		)
	}

	client, err := gomail.NewClient(cfg.MailHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPSender{
		client:  client,
		from:    cfg.MailFrom,
		breaker: breaker.New("smtp", 5, 30*time.Second),
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("invalid sender %q: %w", s.from, err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}

	return s.breaker.Call(func() error {
		if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
			return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
		}
		return nil
	})
}

func (s *SMTPSender) Transport() string { return TransportSMTP }
