package controllers

import (
	"net/http"

	"github.com/boosthq/boosthq-backend/api/responses"
	"github.com/boosthq/boosthq-backend/api/validators"
	internalusers "github.com/boosthq/boosthq-backend/internal/users"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
	"github.com/boosthq/boosthq-backend/pkg/logger"
)

type loginRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

// AuthLogin checks credentials, opens a work session and returns a token.
func AuthLogin(svc internalusers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), internalusers.LoginInput{
			Username: body.Username,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, loginResponse{
			Token: result.Token,
			User: UserView{
				ID:       result.UserID,
				Username: result.Username,
				Role:     result.Role,
			},
		})
	}
}

// AuthLogout closes the caller's open work session, if any.
func AuthLogout(svc internalusers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		if err := svc.Logout(r.Context(), actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// AuthMe returns the authenticated user's public profile.
func AuthMe(svc internalusers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		user, err := svc.Me(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, UserView{ID: user.ID, Username: user.Username, Role: user.Role})
	}
}
