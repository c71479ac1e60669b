package middleware

import (
	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/pkg/logger"
)

type (
	TokenValidator interface {
		Validate(token string) (*models.CustomClaims, error)
	}

	Middleware struct {
		tokens TokenValidator
		log    logger.Logger
	}
)

func NewMiddleware(tokens TokenValidator, log logger.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		log:    log,
	}
}
