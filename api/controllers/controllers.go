package controllers

import (
	"net/http"

	"github.com/boosthq/boosthq-backend/api/middleware"
	"github.com/boosthq/boosthq-backend/api/responses"
	pkgauth "github.com/boosthq/boosthq-backend/pkg/auth"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
	"github.com/boosthq/boosthq-backend/pkg/logger"
)

// requireActor pulls the authenticated actor out of the request context.
// The auth middleware guarantees it is present on protected routes, so a
// miss means the route was wired without that middleware.
func requireActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (pkgauth.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return pkgauth.Actor{}, false
	}
	return actor, true
}
