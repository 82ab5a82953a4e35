package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/laundryease/backend/api/middleware"
	"github.com/laundryease/backend/pkg/enums"
	pkgerrors "github.com/laundryease/backend/pkg/errors"
)

// currentUserID reads the authenticated user from the request context.
// Routes behind the auth middleware always have one; a missing or mangled
// value means the middleware was bypassed.
func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid credentials")
	}
	return id, nil
}

func currentRole(r *http.Request) enums.Role {
	return enums.Role(middleware.RoleFromContext(r.Context()))
}

func isAdmin(r *http.Request) bool {
	return currentRole(r) == enums.RoleAdmin
}
