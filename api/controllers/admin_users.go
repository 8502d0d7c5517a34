package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/detailshop-backend/api/middleware"
	"github.com/angelmondragon/detailshop-backend/api/responses"
	"github.com/angelmondragon/detailshop-backend/api/validators"
	"github.com/angelmondragon/detailshop-backend/internal/users"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
)

type createAdminUserRequest struct {
	Username string `json:"username" validate:"required,max=120"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
	Role     string `json:"role,omitempty"`
}

func AdminListUsers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminCreateUser provisions a back-office account. The generated password is
// returned once when none was supplied.
func AdminCreateUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createAdminUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := enums.ParseAdminRole(strings.ToLower(strings.TrimSpace(body.Role)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		result, err := svc.Create(r.Context(), users.CreateInput{
			Username: strings.TrimSpace(body.Username),
			Name:     strings.TrimSpace(body.Name),
			Password: body.Password,
			Role:     role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func AdminDeleteUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), middleware.PrincipalFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
