package entity

import "errors"

var (
	// Upload errors
	ErrNoFileProvided  = errors.New("no image file provided")
	ErrInvalidFileType = errors.New("invalid file type")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// General errors
	ErrValidation        = errors.New("validation failed")
	ErrProcessingFailure = errors.New("image processing failed")
)
