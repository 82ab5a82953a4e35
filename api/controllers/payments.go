package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/laundryease/backend/api/responses"
	"github.com/laundryease/backend/api/validators"
	"github.com/laundryease/backend/internal/payments"
	pkgerrors "github.com/laundryease/backend/pkg/errors"
	"github.com/laundryease/backend/pkg/logger"
	"github.com/laundryease/backend/pkg/pagination"
)

func paymentActor(r *http.Request) (payments.Actor, error) {
	userID, err := currentUserID(r)
	if err != nil {
		return payments.Actor{}, err
	}
	return payments.Actor{UserID: userID, Role: currentRole(r)}, nil
}

func InitiatePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := paymentActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body payments.InitiateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Initiate(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func VerifyPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := paymentActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body payments.VerifyInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Verify(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, payment)
	}
}

// PaymentCallback handles the gateway redirect. It is unauthenticated; the
// pidx is reconciled against the gateway before anything is trusted.
func PaymentCallback(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		input := payments.CallbackInput{
			Pidx:            strings.TrimSpace(query.Get("pidx")),
			PurchaseOrderID: strings.TrimSpace(query.Get("purchase_order_id")),
			Status:          strings.TrimSpace(query.Get("status")),
			TransactionID:   strings.TrimSpace(query.Get("transaction_id")),
		}

		result, err := svc.Callback(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// PaymentHistory lists payments. Admins may scope to any customer via the
// userId query parameter; everyone else sees their own payments only.
func PaymentHistory(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := paymentActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter payments.HistoryFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("userId")); raw != "" {
			userID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid userId"))
				return
			}
			filter.UserID = &userID
		}
		params := pagination.FromRequest(r)

		rows, total, err := svc.History(r.Context(), actor, filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, rows, len(rows), total, params)
	}
}

func PaymentStats(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.AdminStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
