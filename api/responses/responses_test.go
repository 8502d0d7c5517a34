package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var body ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return body.Error
}

func TestWriteSuccessStatusWrapsData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessStatus(rec, http.StatusCreated, map[string]string{"order": "ord_1"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"data":{"order":"ord_1"}}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestWriteErrorShowsValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").WithDetails(map[string]string{"phone": "is required"})
	WriteError(context.Background(), logger.Nop(), rec, err)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	apiErr := decodeError(t, rec)
	if apiErr.Code != string(pkgerrors.CodeValidation) || apiErr.Message != "bad input" || apiErr.Details == nil {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestWriteErrorHidesUpstreamMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.Wrap(pkgerrors.CodeUpstream, errors.New("sk_test leaked"), "stripe said no")
	WriteError(context.Background(), nil, rec, fmt.Errorf("checkout: %w", err))

	apiErr := decodeError(t, rec)
	if rec.Code != http.StatusInternalServerError || apiErr.Message != "payment provider unavailable" {
		t.Fatalf("unexpected response %d %+v", rec.Code, apiErr)
	}
}

func TestWriteErrorTreatsUntypedAsInternal(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf, Format: logger.FormatJSON})
	rec := httptest.NewRecorder()
	WriteError(context.Background(), logg, rec, errors.New("pq: connection refused"))

	apiErr := decodeError(t, rec)
	if rec.Code != http.StatusInternalServerError || apiErr.Code != string(pkgerrors.CodeInternal) || apiErr.Details != nil {
		t.Fatalf("unexpected response %d %+v", rec.Code, apiErr)
	}
	if strings.Contains(apiErr.Message, "pq") {
		t.Fatalf("driver message leaked: %q", apiErr.Message)
	}
	if !strings.Contains(buf.String(), `"http_status":500`) || !strings.Contains(buf.String(), `"retryable":true`) {
		t.Fatalf("expected status fields in log, got %s", buf.String())
	}
}

func TestWriteRaw(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteRaw(rec, http.StatusCreated, []byte(`{"data":{"ok":true}}`))
	if rec.Code != http.StatusCreated || rec.Body.String() != `{"data":{"ok":true}}` {
		t.Fatalf("unexpected raw response %d %s", rec.Code, rec.Body.String())
	}
}
