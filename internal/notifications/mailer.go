package notifications

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
)

type sendgridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendgridMailer delivers through the Sendgrid v3 API.
type SendgridMailer struct {
	client sendgridClient
	from   *mail.Email
}

func NewSendgridMailer(cfg config.SendgridConfig) (*SendgridMailer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("sendgrid api key required")
	}
	if cfg.DefaultFrom == "" {
		return nil, errors.New("sendgrid from email required")
	}
	return &SendgridMailer{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.DefaultFrom),
	}, nil
}

func (m *SendgridMailer) Send(ctx context.Context, msg EmailMessage) error {
	email := mail.NewSingleEmail(m.from, msg.Subject, mail.NewEmail("", msg.To), msg.PlainText, msg.HTML)
	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send: status %d", resp.StatusCode)
	}
	return nil
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	logg *logger.Logger
}

func NewLogMailer(logg *logger.Logger) *LogMailer {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogMailer{logg: logg}
}

func (m *LogMailer) Send(ctx context.Context, msg EmailMessage) error {
	m.logg.Info(m.logg.WithFields(ctx, map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.PlainText,
	}), "email.logged")
	return nil
}

// NewMailer picks Sendgrid when an api key is configured.
func NewMailer(cfg config.SendgridConfig, logg *logger.Logger) (Mailer, error) {
	if cfg.APIKey == "" {
		return NewLogMailer(logg), nil
	}
	return NewSendgridMailer(cfg)
}
