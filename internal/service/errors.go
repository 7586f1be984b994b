package service

import (
	"errors"

	"sheetdash/internal/sheet"
)

var (
	ErrIDRequired   = errors.New("id is required")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrEmailTaken   = errors.New("email already registered")
	ErrSelfDemotion = errors.New("cannot change your own role")

	// ErrEmptyInput is returned when an operation needs decoded rows and the upload has none.
	ErrEmptyInput = sheet.ErrEmptyInput
)
