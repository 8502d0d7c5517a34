package checkout

import (
	"testing"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
)

func TestValidateLinesCollectsViolations(t *testing.T) {
	err := ValidateLines([]LineInput{
		{ProductName: "Cera", Price: decimal.NewFromInt(10), Quantity: 1},
		{ProductName: " ", Price: decimal.NewFromInt(-1), Quantity: 0},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map")
	}
	violations, ok := details["violations"].([]LineViolation)
	if !ok || len(violations) != 3 {
		t.Fatalf("expected 3 violations, got %#v", details["violations"])
	}
	for _, v := range violations {
		if v.Index != 1 {
			t.Fatalf("violation attributed to wrong line: %+v", v)
		}
	}
}

func TestValidateLinesRejectsEmptyCart(t *testing.T) {
	if err := ValidateLines(nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTotalsAndFormatting(t *testing.T) {
	lines := []LineInput{
		{ProductName: "Teste", Price: decimal.NewFromInt(145), Quantity: 1},
		{ProductName: "Pano", Price: decimal.RequireFromString("12.35"), Quantity: 3},
	}
	if err := ValidateLines(lines); err != nil {
		t.Fatalf("valid cart rejected: %v", err)
	}
	total := Total(lines)
	if !total.Equal(decimal.RequireFromString("182.05")) {
		t.Fatalf("unexpected total %s", total)
	}
	if got := FormatBRL(decimal.NewFromInt(145)); got != "R$ 145.00" {
		t.Fatalf("unexpected format %q", got)
	}
	if got := FormatBRL(LineTotal(lines[1])); got != "R$ 37.05" {
		t.Fatalf("unexpected line total %q", got)
	}
}
