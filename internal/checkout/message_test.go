package checkout

import (
	"strings"
	"testing"

	pkgcheckout "github.com/angelmondragon/detailshop-backend/pkg/checkout"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestBuildWhatsAppMessage(t *testing.T) {
	id := uuid.MustParse("3f2a9c1e-0000-4000-8000-000000000000")
	email := "ana@example.com"
	address := "Rua A, 10"
	lines := []pkgcheckout.LineInput{
		{ProductName: "Cera", Price: decimal.RequireFromString("72.50"), Quantity: 2},
		{ProductName: "Pano", Price: decimal.RequireFromString("9.90"), Quantity: 1},
	}
	msg := buildWhatsAppMessage(id, ContactInput{Name: "Ana", Phone: "119", Email: &email, DeliveryAddress: &address}, lines, pkgcheckout.Total(lines))

	for _, want := range []string{
		"#3F2A9C1E",
		"2x Cera - R$ 145.00",
		"1x Pano - R$ 9.90",
		"*Total: R$ 154.90*",
		"Nome: Ana",
		"E-mail: ana@example.com",
		"Rua A, 10",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestBuildWhatsAppMessageOmitsEmptyContactFields(t *testing.T) {
	lines := []pkgcheckout.LineInput{{ProductName: "Teste", Price: decimal.NewFromInt(145), Quantity: 1}}
	msg := buildWhatsAppMessage(uuid.New(), ContactInput{Name: "Ana", Phone: "119"}, lines, pkgcheckout.Total(lines))
	if strings.Contains(msg, "E-mail") || strings.Contains(msg, "Endereço") {
		t.Fatalf("unexpected optional fields:\n%s", msg)
	}
	if !strings.Contains(msg, "1x Teste - R$ 145.00") {
		t.Fatalf("missing line:\n%s", msg)
	}
}
