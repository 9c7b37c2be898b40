package service

import "errors"

// Errores de negocio compartidos por los servicios. Los handlers los
// traducen a códigos HTTP; cualquier otro error se trata como falla
// de infraestructura y nunca se expone textualmente al caller.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrAlreadyClaimed = errors.New("already claimed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrMisconfigured  = errors.New("misconfigured")
	ErrStoreFailure   = errors.New("store failure")
)
