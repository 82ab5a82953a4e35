package controllers

import (
	"net/http"

	"github.com/laundryease/backend/api/responses"
	"github.com/laundryease/backend/api/validators"
	"github.com/laundryease/backend/internal/notifications"
	"github.com/laundryease/backend/internal/users"
	pkgerrors "github.com/laundryease/backend/pkg/errors"
	"github.com/laundryease/backend/pkg/logger"
	"github.com/laundryease/backend/pkg/pagination"
)

// authPayload is the session bootstrap shape shared by signup, login and me.
type authPayload struct {
	Token               string         `json:"token,omitempty"`
	User                *users.UserDTO `json:"user"`
	UnreadNotifications int64          `json:"unreadNotifications"`
}

func Signup(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body users.SignupInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Signup(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, authPayload{
			Token: result.Token,
			User:  result.User,
		})
	}
}

// Login authenticates and piggybacks the unread notification count so the
// client can badge the bell without a second round trip.
func Login(svc users.Service, notifier notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body users.LoginInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := authPayload{Token: result.Token, User: result.User}
		if notifier != nil && result.User != nil {
			if count, countErr := notifier.UnreadCount(r.Context(), result.User.ID); countErr == nil {
				payload.UnreadNotifications = count
			} else if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "error", countErr.Error()), "login unread count lookup failed")
			}
		}

		responses.WriteSuccess(w, payload)
	}
}

func Me(svc users.Service, notifier notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Profile(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := authPayload{User: profile}
		if notifier != nil {
			if count, countErr := notifier.UnreadCount(r.Context(), userID); countErr == nil {
				payload.UnreadNotifications = count
			}
		}

		responses.WriteSuccess(w, payload)
	}
}

func UpdateProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body users.UpdateProfileInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateProfile(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

func ChangePassword(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body users.ChangePasswordInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ChangePassword(r.Context(), userID, body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, "password updated")
	}
}

// ListUsers serves the admin account listing.
func ListUsers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.FromRequest(r)
		rows, total, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, rows, len(rows), total, params)
	}
}
