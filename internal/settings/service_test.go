package settings

import (
	"context"
	"errors"
	"syscall"
	"testing"

	"github.com/angelmondragon/detailshop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"gorm.io/gorm"
)

type flakyRepo struct {
	calls int
	fail  int
	err   error
	value string
}

func (f *flakyRepo) Find(ctx context.Context, key string) (*models.SiteSetting, error) {
	f.calls++
	if f.calls <= f.fail {
		return nil, f.err
	}
	if f.value == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.SiteSetting{Key: key, Value: f.value}, nil
}

func (f *flakyRepo) Upsert(ctx context.Context, key, value string) (*models.SiteSetting, error) {
	return &models.SiteSetting{Key: key, Value: value}, nil
}

func TestWhatsAppNumberPrefersStoredSetting(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo, "5511900000000")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	if got := svc.WhatsAppNumber(ctx); got != "5511900000000" {
		t.Fatalf("expected configured fallback, got %q", got)
	}
	if _, err := svc.Put(ctx, models.SettingWhatsAppNumber, " 5511988887777 "); err != nil {
		t.Fatalf("put: %v", err)
	}
	if got := svc.WhatsAppNumber(ctx); got != "5511988887777" {
		t.Fatalf("expected stored number, got %q", got)
	}
	if _, err := svc.Put(ctx, models.SettingWhatsAppNumber, "5511977776666"); err != nil {
		t.Fatalf("second put: %v", err)
	}
	if got := svc.WhatsAppNumber(ctx); got != "5511977776666" {
		t.Fatalf("upsert should replace value, got %q", got)
	}
}

func TestGetPublicOnlyServesWhitelistedKeys(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	svc, _ := NewService(repo, "")
	ctx := context.Background()
	if _, err := svc.Put(ctx, "smtp_password", "secret"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := svc.GetPublic(ctx, "smtp_password"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("private key must be hidden, got %v", err)
	}
	if _, err := svc.GetPublic(ctx, KeyInstagramURL); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("unset public key is not found, got %v", err)
	}
}

func TestGetRetriesTransientOnce(t *testing.T) {
	repo := &flakyRepo{fail: 1, err: syscall.ECONNRESET, value: "5511"}
	svc, _ := NewService(repo, "fallback")
	if got := svc.WhatsAppNumber(context.Background()); got != "5511" || repo.calls != 2 {
		t.Fatalf("expected one retry, got value=%q calls=%d", got, repo.calls)
	}

	repo = &flakyRepo{fail: 10, err: syscall.ECONNRESET, value: "5511"}
	svc, _ = NewService(repo, "fallback")
	if _, _, err := svc.Get(context.Background(), models.SettingWhatsAppNumber); !errors.Is(err, syscall.ECONNRESET) || repo.calls != 2 {
		t.Fatalf("expected failure after single retry, got err=%v calls=%d", err, repo.calls)
	}
	if got := svc.WhatsAppNumber(context.Background()); got != "fallback" {
		t.Fatalf("expected fallback on failure, got %q", got)
	}
}
