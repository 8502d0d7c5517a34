package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/detailshop-backend/api/middleware"
	"github.com/angelmondragon/detailshop-backend/api/responses"
	"github.com/angelmondragon/detailshop-backend/api/validators"
	"github.com/angelmondragon/detailshop-backend/internal/auth"
	"github.com/angelmondragon/detailshop-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
)

// AdminAuthLogin opens a back-office session.
func AdminAuthLogin(svc auth.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.AdminLoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AdminLogin(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cfg, result.Token, result.ExpiresAt)
		responses.WriteSuccess(w, result)
	}
}

// AdminAuthMe returns the signed-in back-office user.
func AdminAuthMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.AdminMe(r.Context(), middleware.PrincipalFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// CustomerRegister creates or upgrades a customer account and signs it in.
func CustomerRegister(svc auth.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cfg, result.Token, result.ExpiresAt)
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func CustomerLogin(svc auth.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.CustomerLoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CustomerLogin(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cfg, result.Token, result.ExpiresAt)
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the current session for either population and clears
// the cookie. Anonymous calls succeed.
func AuthLogout(svc auth.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context(), middleware.PrincipalFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		clearSessionCookie(w, cfg)
		responses.WriteSuccess(w, map[string]bool{"loggedOut": true})
	}
}

func setSessionCookie(w http.ResponseWriter, cfg config.JWTConfig, token string, expiresAt time.Time) {
	if cfg.CookieName == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, cfg config.JWTConfig) {
	if cfg.CookieName == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
