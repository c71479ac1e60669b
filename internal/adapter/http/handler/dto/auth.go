package dto

import (
	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/pkg/validator"
)

type SignupRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
}

// OwnerLocation returns the signup coordinates, or nil when the lot
// location is set later through the location endpoint.
func (r *SignupRequest) OwnerLocation() *models.Location {
	if r.Lat == nil || r.Lon == nil {
		return nil
	}
	return &models.Location{Latitude: *r.Lat, Longitude: *r.Lon}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func ValidateSignup(v *validator.Validator, req *SignupRequest) {
	v.Check(req.Email != "", "email", "must be provided")
	v.Check(validator.Matches(req.Email, validator.EmailRX), "email", "must be a valid email address")
	v.Check(len(req.Email) <= 500, "email", "must not be more than 500 bytes long")

	v.Check(req.Password != "", "password", "must be provided")
	v.Check(len(req.Password) >= 8, "password", "must be at least 8 bytes long")
	v.Check(len(req.Password) <= 50, "password", "must not be more than 50 bytes long")

	if req.Lat != nil {
		v.Check(*req.Lat >= -90 && *req.Lat <= 90, "lat", "must be between -90 and 90")
	}
	if req.Lon != nil {
		v.Check(*req.Lon >= -180 && *req.Lon <= 180, "lon", "must be between -180 and 180")
	}
	v.Check((req.Lat == nil) == (req.Lon == nil), "lat", "lat and lon must be provided together")
}

func ValidateLogin(v *validator.Validator, req *LoginRequest) {
	v.Check(req.Email != "", "email", "must be provided")
	v.Check(req.Password != "", "password", "must be provided")
}
