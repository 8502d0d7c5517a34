package notifications

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	pkgcheckout "github.com/angelmondragon/detailshop-backend/pkg/checkout"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

const dateLayout = "02/01/2006 15:04"

// EmailMessage is one rendered email for a single recipient.
type EmailMessage struct {
	To        string
	Subject   string
	PlainText string
	HTML      string
}

// Mailer sends a rendered email.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailNotifier renders notifications and sends one email per recipient.
type EmailNotifier struct {
	mailer    Mailer
	storeName string
}

func NewEmailNotifier(mailer Mailer, storeName string) (*EmailNotifier, error) {
	if mailer == nil {
		return nil, errors.New("mailer required")
	}
	if strings.TrimSpace(storeName) == "" {
		storeName = "Detail Shop"
	}
	return &EmailNotifier{mailer: mailer, storeName: storeName}, nil
}

func (e *EmailNotifier) Notify(ctx context.Context, n Notification) error {
	subject, lines, err := e.render(n)
	if err != nil {
		return err
	}
	plain := strings.Join(lines, "\n")
	htmlBody := renderHTML(lines)

	var errs error
	for _, to := range n.Recipients {
		to = strings.TrimSpace(to)
		if to == "" {
			continue
		}
		if err := e.mailer.Send(ctx, EmailMessage{To: to, Subject: subject, PlainText: plain, HTML: htmlBody}); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("send to %s: %w", to, err))
		}
	}
	return errs
}

func (e *EmailNotifier) render(n Notification) (string, []string, error) {
	switch n.Type {
	case enums.NotificationTypeAppointmentCreated:
		lines := []string{
			"Novo pré-agendamento recebido.",
			"",
			"Cliente: " + n.CustomerName,
			"Telefone: " + n.CustomerPhone,
		}
		lines = appendOptional(lines, "Veículo", n.VehicleInfo)
		lines = appendOptional(lines, "Serviço", n.ServiceDescription)
		if n.PreferredDate != nil {
			lines = append(lines, "Data preferida: "+n.PreferredDate.Format(dateLayout))
		}
		return fmt.Sprintf("[%s] Novo agendamento de %s", e.storeName, n.CustomerName), lines, nil

	case enums.NotificationTypeAppointmentStatusChanged:
		lines := []string{
			"Olá, " + n.CustomerName + "!",
			"",
			"O status do seu agendamento foi atualizado para: " + n.StatusLabel + ".",
		}
		if n.ConfirmedDate != nil {
			lines = append(lines, "Data confirmada: "+n.ConfirmedDate.Format(dateLayout))
		}
		if n.EstimatedPrice != nil {
			lines = append(lines, "Valor estimado: "+pkgcheckout.FormatBRL(decimal.New(*n.EstimatedPrice, -2)))
		}
		lines = appendOptional(lines, "Observações", n.AdminNotes)
		lines = append(lines, "", "Equipe "+e.storeName)
		return fmt.Sprintf("[%s] Seu agendamento: %s", e.storeName, n.StatusLabel), lines, nil

	default:
		return "", nil, fmt.Errorf("unsupported notification type %q", n.Type)
	}
}

func appendOptional(lines []string, label string, value *string) []string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return lines
	}
	return append(lines, label+": "+strings.TrimSpace(*value))
}

func renderHTML(lines []string) string {
	var b strings.Builder
	b.WriteString("<div>")
	for _, line := range lines {
		if line == "" {
			b.WriteString("<br>")
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>")
	}
	b.WriteString("</div>")
	return b.String()
}

