package handler

import (
	"context"
	"net/http"

	"github.com/arman-qz/parking-system/internal/adapter/http/handler/dto"
	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/logger"
	wrap "github.com/arman-qz/parking-system/pkg/logger/wrapper"
	"github.com/arman-qz/parking-system/pkg/uuid"
	"github.com/arman-qz/parking-system/pkg/validator"
)

type OwnerService interface {
	GetProfile(ctx context.Context, email string) (*models.OwnerProfile, error)
	GetBalance(ctx context.Context, email string) (types.Amount, error)
	GetLocation(ctx context.Context, email string) (models.Location, error)
	SetLocation(ctx context.Context, email string, lat, lon float64) error
	GetPaymentPolicy(ctx context.Context, email string) (*models.PaymentPolicy, error)
	SetPaymentPolicy(ctx context.Context, email string, rate types.Amount) error
	VerifyPayment(ctx context.Context, sessionID uuid.UUID) (types.PaymentStatus, error)
}

// Owner serves the parking owner's account endpoints.
type Owner struct {
	owner OwnerService
	l     logger.Logger
}

func NewOwner(service OwnerService, l logger.Logger) *Owner {
	return &Owner{
		owner: service,
		l:     l,
	}
}

// Profile godoc
// @Summary      Owner profile
// @Tags         Owner
// @Produce      json
// @Success      200  {object}  models.OwnerProfile
// @Security     BearerAuth
// @Router       /owner/profile [get]
func (h *Owner) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_owner_profile")

	principal := models.PrincipalFromContext(ctx)
	if principal.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	profile, err := h.owner.GetProfile(ctx, principal.Email)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get owner profile", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"profile": profile}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Balance godoc
// @Summary      Owner balance
// @Tags         Owner
// @Produce      json
// @Success      200  {object}  map[string]string
// @Security     BearerAuth
// @Router       /owner/balance [get]
func (h *Owner) Balance(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_owner_balance")

	principal := models.PrincipalFromContext(ctx)
	if principal.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	balance, err := h.owner.GetBalance(ctx, principal.Email)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get owner balance", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"balance": balance}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Location godoc
// @Summary      Lot location
// @Tags         Owner
// @Produce      json
// @Success      200  {object}  models.Location
// @Security     BearerAuth
// @Router       /owner/location [get]
func (h *Owner) Location(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_owner_location")

	principal := models.PrincipalFromContext(ctx)
	if principal.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	loc, err := h.owner.GetLocation(ctx, principal.Email)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get owner location", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"location": loc}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// SetLocation godoc
// @Summary      Update lot location
// @Tags         Owner
// @Accept       json
// @Produce      json
// @Param        request body dto.SetLocationRequest true "Coordinates"
// @Success      200  {object}  map[string]string
// @Security     BearerAuth
// @Router       /owner/location [put]
func (h *Owner) SetLocation(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "set_owner_location")

	principal := models.PrincipalFromContext(ctx)
	if principal.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	req := &dto.SetLocationRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	dto.ValidateSetLocation(v, req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	if err := h.owner.SetLocation(ctx, principal.Email, req.Lat, req.Lon); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to set owner location", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"message": "location updated"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Policy godoc
// @Summary      Billing policy
// @Tags         Owner
// @Produce      json
// @Success      200  {object}  models.PaymentPolicy
// @Failure      422  {object}  map[string]string
// @Security     BearerAuth
// @Router       /owner/policy [get]
func (h *Owner) Policy(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_payment_policy")

	principal := models.PrincipalFromContext(ctx)
	if principal.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	policy, err := h.owner.GetPaymentPolicy(ctx, principal.Email)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get payment policy", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"policy": policy}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// SetPolicy godoc
// @Summary      Update billing policy
// @Tags         Owner
// @Accept       json
// @Produce      json
// @Param        request body dto.SetPolicyRequest true "Per-minute rate"
// @Success      200  {object}  map[string]string
// @Security     BearerAuth
// @Router       /owner/policy [put]
func (h *Owner) SetPolicy(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "set_payment_policy")

	principal := models.PrincipalFromContext(ctx)
	if principal.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	req := &dto.SetPolicyRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	dto.ValidateSetPolicy(v, req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	if err := h.owner.SetPaymentPolicy(ctx, principal.Email, req.RatePerMinute); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to set payment policy", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"message": "payment policy updated"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// VerifyPayment godoc
// @Summary      Verify a session payment
// @Description  Reports whether the given session has been settled
// @Tags         Owner
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /sessions/{id}/payment [get]
func (h *Owner) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "verify_payment")

	principal := models.PrincipalFromContext(ctx)
	if principal.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		badRequestResponse(w, "invalid session id")
		return
	}

	status, err := h.owner.VerifyPayment(ctx, sessionID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to verify payment", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"session_id":     sessionID,
		"payment_status": status,
		"paid":           status == types.PaymentPaid,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}
