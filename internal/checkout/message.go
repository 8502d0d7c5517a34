package checkout

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgcheckout "github.com/angelmondragon/detailshop-backend/pkg/checkout"
)

// buildWhatsAppMessage renders the order summary the buyer sends to the shop.
func buildWhatsAppMessage(orderID uuid.UUID, contact ContactInput, lines []pkgcheckout.LineInput, total decimal.Decimal) string {
	var b strings.Builder
	b.WriteString("*Novo pedido #")
	b.WriteString(strings.ToUpper(orderID.String()[:8]))
	b.WriteString("*\n\n")

	for _, line := range lines {
		b.WriteString(strconv.Itoa(line.Quantity))
		b.WriteString("x ")
		b.WriteString(line.ProductName)
		b.WriteString(" - ")
		b.WriteString(pkgcheckout.FormatBRL(pkgcheckout.LineTotal(line)))
		b.WriteString("\n")
	}

	b.WriteString("\n*Total: ")
	b.WriteString(pkgcheckout.FormatBRL(total))
	b.WriteString("*\n\n")

	b.WriteString("*Dados do cliente*\n")
	b.WriteString("Nome: " + contact.Name + "\n")
	b.WriteString("Telefone: " + contact.Phone + "\n")
	if email := trimmed(contact.Email); email != nil {
		b.WriteString("E-mail: " + *email + "\n")
	}
	if address := trimmed(contact.DeliveryAddress); address != nil {
		b.WriteString("Endereço de entrega: " + *address + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
