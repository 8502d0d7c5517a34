package validators

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
)

type lineRequest struct {
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
}

type cartRequest struct {
	Items []lineRequest `json:"items" validate:"required,min=1,dive"`
}

func decode(t *testing.T, body string) (cartRequest, error) {
	t.Helper()
	var dest cartRequest
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return dest, DecodeJSONBody(req, &dest)
}

func validationDetails(t *testing.T, err error) map[string]string {
	t.Helper()
	var typed *pkgerrors.Error
	if !errors.As(err, &typed) || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, _ := typed.Details().(map[string]string)
	return details
}

func TestDecodeJSONBodyReportsNestedFields(t *testing.T) {
	_, err := decode(t, `{"items":[{"name":"Cera","price":10},{"name":"","price":-1}]}`)
	details := validationDetails(t, err)
	if _, ok := details["items[1].name"]; !ok {
		t.Fatalf("expected items[1].name in %v", details)
	}
	if got := details["items[1].price"]; got != "must be at least 0" {
		t.Fatalf("unexpected price message %q", got)
	}
}

func TestDecodeJSONBodyAcceptsValidCart(t *testing.T) {
	dest, err := decode(t, `{"items":[{"name":"Cera","price":72.5}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dest.Items[0].Price.Equal(decimal.RequireFromString("72.5")) {
		t.Fatalf("unexpected price %s", dest.Items[0].Price)
	}
}

func TestDecodeJSONBodyRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"empty":    ``,
		"unknown":  `{"items":[],"coupon":"x"}`,
		"trailing": `{"items":[{"name":"a","price":1}]}{}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := decode(t, body); err == nil {
				t.Fatalf("expected error for %s body", name)
			}
		})
	}
}

func TestSanitizeStringCutsByRune(t *testing.T) {
	if got := SanitizeString("  polimento técnico  ", 12); got != "polimento té" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString(" cera ", 0); got != "cera" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestParseQueryBool(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?active=false&bad=maybe", nil)
	value, err := ParseQueryBool(req, "active")
	if err != nil || value == nil || *value {
		t.Fatalf("expected false, got %v %v", value, err)
	}
	if value, _ := ParseQueryBool(req, "missing"); value != nil {
		t.Fatalf("absent parameter should be nil")
	}
	if _, err := ParseQueryBool(req, "bad"); err == nil {
		t.Fatalf("expected error for non-boolean")
	}
}
