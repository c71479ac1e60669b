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

type ParkingService interface {
	StartSession(ctx context.Context, driverEmail, ownerEmail string) (*models.StartResult, error)
	StopSession(ctx context.Context, sessionID uuid.UUID, driverEmail, ownerEmail string) (*models.SessionReceipt, error)
	PaySession(ctx context.Context, sessionID uuid.UUID, driverEmail string) (*models.SessionReceipt, error)
	GetActiveSession(ctx context.Context, driverEmail string) (*models.ActiveSessionStatus, error)
	GetDriverBalance(ctx context.Context, driverEmail string) (types.Amount, error)
}

// Driver serves the driver-facing session lifecycle endpoints. The driver's
// identity always comes from the authenticated principal, never the body.
type Driver struct {
	parking ParkingService
	l       logger.Logger
}

func NewDriver(parking ParkingService, l logger.Logger) *Driver {
	return &Driver{
		parking: parking,
		l:       l,
	}
}

// StartSession godoc
// @Summary      Start a parking session
// @Description  Opens a session at the given lot, or reports the driver's existing active session
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        request body dto.StartSessionRequest true "Target parking lot"
// @Success      201  {object}  dto.StartSessionResponse
// @Success      200  {object}  dto.StartSessionResponse
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /sessions/start [post]
func (h *Driver) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "start_session")

	principal := models.PrincipalFromContext(ctx)
	if principal.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	req := &dto.StartSessionRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	dto.ValidateStartSession(v, req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	result, err := h.parking.StartSession(ctx, principal.Email, req.OwnerEmail)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to start session", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	// A duplicate start reports the existing session rather than a new one.
	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}

	response := envelope{"session": dto.NewStartSessionResponse(result)}
	if err := writeJSON(w, status, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// StopSession godoc
// @Summary      Stop a parking session
// @Description  Ends the active session and returns the billed amounts
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body dto.StopSessionRequest true "Parking lot the session was started at"
// @Success      200  {object}  dto.SessionReceiptResponse
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /sessions/{id}/stop [post]
func (h *Driver) StopSession(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "stop_session")

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

	req := &dto.StopSessionRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	dto.ValidateStopSession(v, req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	receipt, err := h.parking.StopSession(ctx, sessionID, principal.Email, req.OwnerEmail)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to stop session", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"receipt": dto.NewSessionReceiptResponse(receipt)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// PaySession godoc
// @Summary      Pay for a session
// @Description  Settles an ended session; repeating the call returns the same receipt without charging again
// @Tags         Sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200  {object}  dto.SessionReceiptResponse
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Security     BearerAuth
// @Router       /sessions/{id}/pay [post]
func (h *Driver) PaySession(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "pay_session")

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

	receipt, err := h.parking.PaySession(ctx, sessionID, principal.Email)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to pay session", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"receipt": dto.NewSessionReceiptResponse(receipt)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// ActiveSession godoc
// @Summary      Current session
// @Description  Returns the driver's active session with the charge accrued so far
// @Tags         Sessions
// @Produce      json
// @Success      200  {object}  dto.ActiveSessionResponse
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /sessions/active [get]
func (h *Driver) ActiveSession(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_active_session")

	principal := models.PrincipalFromContext(ctx)
	if principal.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	status, err := h.parking.GetActiveSession(ctx, principal.Email)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get active session", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"session": dto.NewActiveSessionResponse(status)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Balance godoc
// @Summary      Driver balance
// @Tags         Driver
// @Produce      json
// @Success      200  {object}  map[string]string
// @Security     BearerAuth
// @Router       /driver/balance [get]
func (h *Driver) Balance(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_driver_balance")

	principal := models.PrincipalFromContext(ctx)
	if principal.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	balance, err := h.parking.GetDriverBalance(ctx, principal.Email)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get driver balance", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"balance": balance}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}
