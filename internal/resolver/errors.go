package resolver

import (
	"errors"

	"github.com/Sagun15/edfi-apis-sub000/internal/model"
)

var (
	ErrUnknownResource = errors.New("unknown resource")
	ErrNotFound        = errors.New("not found")
	ErrETagMismatch    = errors.New("etag mismatch")
	ErrConflict        = errors.New("conflict")
	ErrInvalidPayload  = model.ErrInvalidPayload
)
