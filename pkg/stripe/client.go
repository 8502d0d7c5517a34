package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
)

var (
	errAPIKeyRequired = errors.New("stripe api key is required")
	errSecretRequired = errors.New("stripe webhook secret is required")
)

// keyPrefixes lists the secret and restricted key prefixes each environment
// accepts, so a live key never runs against a test deployment or vice versa.
var keyPrefixes = map[string][]string{
	"test": {"sk_test_", "rk_test_"},
	"live": {"sk_live_", "rk_live_"},
}

// Client carries the validated Stripe credentials. A nil *Client means
// payments are not configured.
type Client struct {
	environment   string
	signingSecret string
}

// NewClient validates cfg and installs the key and a logger bridge as the
// stripe-go package defaults used by the checkout session calls.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env := cfg.Environment()
	prefixes, ok := keyPrefixes[env]
	if !ok {
		return nil, fmt.Errorf("stripe environment must be test or live, got %q", env)
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errSecretRequired
	}
	if !hasAnyPrefix(apiKey, prefixes) {
		return nil, fmt.Errorf("stripe environment %q requires a key starting with %s", env, strings.Join(prefixes, " or "))
	}

	stripe.Key = apiKey
	stripe.SetAppInfo(&stripe.AppInfo{Name: "detailshop-backend"})
	if logg != nil {
		stripe.DefaultLeveledLogger = &leveledLogger{logg: logg, ctx: logg.WithField(ctx, "component", "stripe")}
		logg.Info(logg.WithField(ctx, "stripe_env", env), "stripe client initialized")
	}
	return &Client{environment: env, signingSecret: secret}, nil
}

// Environment reports test or live.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// SigningSecret returns the webhook signing secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

// leveledLogger routes stripe-go's internal logging through zerolog. Request
// chatter stays at debug; stripe-go only reports errors above it.
type leveledLogger struct {
	logg *logger.Logger
	ctx  context.Context
}

func (l *leveledLogger) Debugf(format string, v ...any) {
	l.logg.Debug(l.ctx, fmt.Sprintf(format, v...))
}

func (l *leveledLogger) Infof(format string, v ...any) {
	l.logg.Debug(l.ctx, fmt.Sprintf(format, v...))
}

func (l *leveledLogger) Warnf(format string, v ...any) {
	l.logg.Warn(l.ctx, fmt.Sprintf(format, v...))
}

func (l *leveledLogger) Errorf(format string, v ...any) {
	l.logg.Error(l.ctx, "stripe request failed", fmt.Errorf(format, v...))
}
