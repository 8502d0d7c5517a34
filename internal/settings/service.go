package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"gorm.io/gorm"
)

// Keys exposed on the public settings endpoint.
const (
	KeyStoreAddress = "store_address"
	KeyOpeningHours = "opening_hours"
	KeyInstagramURL = "instagram_url"
)

var publicKeys = map[string]bool{
	models.SettingWhatsAppNumber: true,
	KeyStoreAddress:              true,
	KeyOpeningHours:              true,
	KeyInstagramURL:              true,
}

// SettingDTO is the transport shape of one setting.
type SettingDTO struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Provider answers setting reads for other services.
type Provider interface {
	Get(ctx context.Context, key string) (string, bool, error)
	WhatsAppNumber(ctx context.Context) string
}

// Service exposes public reads and admin writes of site settings.
type Service interface {
	Provider
	GetPublic(ctx context.Context, key string) (*SettingDTO, error)
	Put(ctx context.Context, key, value string) (*SettingDTO, error)
}

type readWriter interface {
	Find(ctx context.Context, key string) (*models.SiteSetting, error)
	Upsert(ctx context.Context, key, value string) (*models.SiteSetting, error)
}

type service struct {
	repo            readWriter
	defaultWhatsApp string
}

// NewService builds the settings service. defaultWhatsApp answers when the
// whatsapp_number setting is absent.
func NewService(repo readWriter, defaultWhatsApp string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo, defaultWhatsApp: strings.TrimSpace(defaultWhatsApp)}, nil
}

func (s *service) Get(ctx context.Context, key string) (string, bool, error) {
	var setting *models.SiteSetting
	err := db.RetryTransient(ctx, func(ctx context.Context) error {
		var err error
		setting, err = s.repo.Find(ctx, key)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return setting.Value, true, nil
}

// WhatsAppNumber never fails: lookup errors fall back to the configured number.
func (s *service) WhatsAppNumber(ctx context.Context) string {
	value, ok, err := s.Get(ctx, models.SettingWhatsAppNumber)
	if err != nil || !ok || strings.TrimSpace(value) == "" {
		return s.defaultWhatsApp
	}
	return strings.TrimSpace(value)
}

func (s *service) GetPublic(ctx context.Context, key string) (*SettingDTO, error) {
	if !publicKeys[key] {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
	}
	var setting *models.SiteSetting
	err := db.RetryTransient(ctx, func(ctx context.Context) error {
		var err error
		setting, err = s.repo.Find(ctx, key)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if key == models.SettingWhatsAppNumber && s.defaultWhatsApp != "" {
				return &SettingDTO{Key: key, Value: s.defaultWhatsApp}, nil
			}
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load setting")
	}
	return &SettingDTO{Key: setting.Key, Value: setting.Value, UpdatedAt: setting.UpdatedAt}, nil
}

func (s *service) Put(ctx context.Context, key, value string) (*SettingDTO, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "key is required")
	}
	setting, err := s.repo.Upsert(ctx, key, strings.TrimSpace(value))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save setting")
	}
	return &SettingDTO{Key: setting.Key, Value: setting.Value, UpdatedAt: setting.UpdatedAt}, nil
}
