package util

import "errors"

var (
	ErrUsernameRegistered = errors.New("username already registered")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProgressNotFound   = errors.New("track progress not found")
	ErrTaskCompleted      = errors.New("task already completed")
	ErrAIUnavailable      = errors.New("generation unavailable")
)
