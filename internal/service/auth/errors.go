package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenGenerateFail  = errors.New("failed to generate token")
	ErrUnexpected         = errors.New("unexpected error")
	ErrNotUniqueEmail     = errors.New("account with this email already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpToken           = errors.New("expired token")
	ErrUnknownRole        = errors.New("unknown account role")
)
