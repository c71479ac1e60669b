package dto

import (
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/validator"
)

type SetLocationRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func ValidateSetLocation(v *validator.Validator, req *SetLocationRequest) {
	v.Check(req.Lat >= -90 && req.Lat <= 90, "lat", "must be between -90 and 90")
	v.Check(req.Lon >= -180 && req.Lon <= 180, "lon", "must be between -180 and 180")
}

type SetPolicyRequest struct {
	RatePerMinute types.Amount `json:"rate_per_minute"`
}

func ValidateSetPolicy(v *validator.Validator, req *SetPolicyRequest) {
	v.Check(!req.RatePerMinute.IsZero() && !req.RatePerMinute.IsNegative(), "rate_per_minute", "must be a positive amount")
}
