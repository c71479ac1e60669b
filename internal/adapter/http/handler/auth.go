package handler

import (
	"context"
	"net/http"

	"github.com/arman-qz/parking-system/internal/adapter/http/handler/dto"
	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/logger"
	wrap "github.com/arman-qz/parking-system/pkg/logger/wrapper"
	"github.com/arman-qz/parking-system/pkg/validator"
)

type AuthService interface {
	RegisterDriver(ctx context.Context, email, password string) error
	RegisterOwner(ctx context.Context, email, password string, location *models.Location) error
	Login(ctx context.Context, email, password string, role types.AccountRole) (*models.AccessToken, error)
}

// Auth serves signup and login for one account role. The driver and owner
// services each mount their own instance.
type Auth struct {
	auth AuthService
	role types.AccountRole
	l    logger.Logger
}

func NewAuth(service AuthService, role types.AccountRole, l logger.Logger) *Auth {
	return &Auth{
		auth: service,
		role: role,
		l:    l,
	}
}

// Signup godoc
// @Summary      Sign up
// @Description  Creates an account for the service's role
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body dto.SignupRequest true "Signup payload"
// @Success      201  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /signup [post]
func (h *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "signup")

	req := &dto.SignupRequest{}
	if err := readJSON(w, r, req); err != nil {
		h.l.Error(ctx, "failed to read request JSON data", err)
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	dto.ValidateSignup(v, req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	var err error
	switch h.role {
	case types.OwnerRole:
		err = h.auth.RegisterOwner(ctx, req.Email, req.Password, req.OwnerLocation())
	default:
		err = h.auth.RegisterDriver(ctx, req.Email, req.Password)
	}
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to register account", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"email": req.Email}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Login godoc
// @Summary      Log in
// @Description  Issues an access token for valid credentials
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "Login payload"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /login [post]
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "login")

	req := &dto.LoginRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	dto.ValidateLogin(v, req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	token, err := h.auth.Login(ctx, req.Email, req.Password, h.role)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to login", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"access_token": token.Token,
		"expires_at":   token.ExpiresAt,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}
