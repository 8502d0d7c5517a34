package checkout

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
)

// LineInput describes one submitted cart line.
type LineInput struct {
	ProductName string
	Price       decimal.Decimal
	Quantity    int
}

// LineViolation explains why a line was rejected.
type LineViolation struct {
	Index  int    `json:"index"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidateLines checks every cart line and reports all violations at once.
func ValidateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart must contain at least one item")
	}
	var violations []LineViolation
	for i, line := range lines {
		if strings.TrimSpace(line.ProductName) == "" {
			violations = append(violations, LineViolation{Index: i, Field: "productName", Reason: "required"})
		}
		if line.Quantity < 1 {
			violations = append(violations, LineViolation{Index: i, Field: "quantity", Reason: "must be at least 1"})
		}
		if line.Price.IsNegative() {
			violations = append(violations, LineViolation{Index: i, Field: "productPrice", Reason: "must not be negative"})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%d invalid cart field(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}

// Total sums price times quantity over every line.
func Total(lines []LineInput) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(LineTotal(line))
	}
	return total
}

// LineTotal is price times quantity.
func LineTotal(line LineInput) decimal.Decimal {
	return line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// FormatBRL renders an amount as "R$ 145.00".
func FormatBRL(amount decimal.Decimal) string {
	return "R$ " + amount.StringFixed(2)
}
